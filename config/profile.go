package config

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/linht/adrv-manager/adrv903x"
	"gopkg.in/yaml.v3"
)

// GainBounds is the allowed gain index window of one Rx channel.
type GainBounds struct {
	Min uint8 `yaml:"min" json:"min"`
	Max uint8 `yaml:"max" json:"max"`
}

// Profile is the device profile file: which channels and signal chains were
// brought up, the silicon revision, and the gain index windows.
type Profile struct {
	InitializedChannels []adrv903x.Channel              `yaml:"initialized_channels" json:"initialized_channels"`
	Profiles            []string                        `yaml:"profiles" json:"profiles"`
	SiliconRevision     string                          `yaml:"silicon_revision" json:"silicon_revision"`
	GainTableByteOrder  string                          `yaml:"gain_table_byte_order" json:"gain_table_byte_order"`
	GainIndex           map[adrv903x.Channel]GainBounds `yaml:"gain_index,omitempty" json:"gain_index,omitempty"`
}

// DefaultProfile describes a fully initialized B0 device.
func DefaultProfile() *Profile {
	chs := adrv903x.MaskAll.Channels()
	return &Profile{
		InitializedChannels: chs,
		Profiles:            []string{"tx", "rx", "orx"},
		SiliconRevision:     "B0",
		GainTableByteOrder:  "little",
	}
}

// LoadProfile reads a profile file. An empty path yields DefaultProfile.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return p, nil
}

// State converts the profile into the core device state.
func (p *Profile) State() (*adrv903x.State, error) {
	s := adrv903x.NewState()
	s.InitializedChannels = adrv903x.MaskOf(p.InitializedChannels...)
	if s.InitializedChannels == 0 {
		return nil, fmt.Errorf("profile initializes no channels")
	}

	s.ProfilesValid = 0
	for _, name := range p.Profiles {
		switch strings.ToLower(name) {
		case "tx":
			s.ProfilesValid |= adrv903x.ProfileTx
		case "rx":
			s.ProfilesValid |= adrv903x.ProfileRx
		case "orx":
			s.ProfilesValid |= adrv903x.ProfileOrx
		default:
			return nil, fmt.Errorf("unknown profile %q", name)
		}
	}

	rev, err := ParseSiliconRevision(p.SiliconRevision)
	if err != nil {
		return nil, err
	}
	s.SiRev = rev

	for ch, b := range p.GainIndex {
		if !ch.IsRx() {
			return nil, fmt.Errorf("gain_index: %s is not an Rx channel", ch)
		}
		if b.Min >= b.Max {
			return nil, fmt.Errorf("gain_index: %s min %d must be below max %d", ch, b.Min, b.Max)
		}
		i := rxIndex(ch)
		s.MinGainIndex[i] = b.Min
		s.MaxGainIndex[i] = b.Max
	}
	return s, nil
}

// ByteOrder returns the gain table byte order.
func (p *Profile) ByteOrder() (binary.ByteOrder, error) {
	switch strings.ToLower(p.GainTableByteOrder) {
	case "", "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("unknown gain_table_byte_order %q, use little or big", p.GainTableByteOrder)
}

// ParseSiliconRevision converts a revision like "B0" to its register value 0xB0.
func ParseSiliconRevision(s string) (uint8, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 || s[0] < 'A' || s[0] > 'F' || s[1] < '0' || s[1] > '9' {
		return 0, fmt.Errorf("invalid silicon revision %q", s)
	}
	return (s[0]-'A'+0xA)<<4 | (s[1] - '0'), nil
}

func rxIndex(ch adrv903x.Channel) int {
	for i, rx := range adrv903x.RxMaskAll.Channels() {
		if rx == ch {
			return i
		}
	}
	return 0
}
