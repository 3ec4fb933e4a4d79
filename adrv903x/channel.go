package adrv903x

import (
	"fmt"
	"math/bits"
	"strings"
)

// Channel identifies one receive path. Values are disjoint bits so they can be
// OR'ed into a ChannelMask.
type Channel uint32

const (
	ChannelNone Channel = 0
	Rx0         Channel = 0x001
	Rx1         Channel = 0x002
	Rx2         Channel = 0x004
	Rx3         Channel = 0x008
	Rx4         Channel = 0x010
	Rx5         Channel = 0x020
	Rx6         Channel = 0x040
	Rx7         Channel = 0x080
	ORx0        Channel = 0x100
	ORx1        Channel = 0x200
)

// ChannelMask is a set of channels.
type ChannelMask uint32

const (
	RxMaskAll  ChannelMask = 0x0FF
	OrxMaskAll ChannelMask = 0x300
	MaskAll                = RxMaskAll | OrxMaskAll
)

// Number of channels per category.
const (
	NumRxChannels  = 8
	NumOrxChannels = 2
	NumDdcBands    = 2
)

var channelNames = map[Channel]string{
	Rx0: "rx0", Rx1: "rx1", Rx2: "rx2", Rx3: "rx3",
	Rx4: "rx4", Rx5: "rx5", Rx6: "rx6", Rx7: "rx7",
	ORx0: "orx0", ORx1: "orx1",
}

func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return fmt.Sprintf("channel(0x%03X)", uint32(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Channel) MarshalText() ([]byte, error) {
	if _, ok := channelNames[c]; !ok {
		return nil, fmt.Errorf("unknown channel 0x%X", uint32(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Channel) UnmarshalText(text []byte) error {
	ch, err := ParseChannel(string(text))
	if err != nil {
		return err
	}
	*c = ch
	return nil
}

// ParseChannel accepts names like "rx3" or "ORx1".
func ParseChannel(s string) (Channel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for ch, name := range channelNames {
		if name == s {
			return ch, nil
		}
	}
	return ChannelNone, fmt.Errorf("unknown channel %q", s)
}

// IsRx reports whether c is exactly one Rx channel.
func (c Channel) IsRx() bool {
	return ChannelMask(c)&RxMaskAll != 0 && bits.OnesCount32(uint32(c)) == 1
}

// IsOrx reports whether c is exactly one ORx channel.
func (c Channel) IsOrx() bool {
	return ChannelMask(c)&OrxMaskAll != 0 && bits.OnesCount32(uint32(c)) == 1
}

// index returns the ordinal of the channel within its category (0-7 for Rx, 0-1 for ORx).
func (c Channel) index() int {
	if c.IsOrx() {
		return bits.TrailingZeros32(uint32(c)) - NumRxChannels
	}
	return bits.TrailingZeros32(uint32(c))
}

// Mask returns the single-channel mask for c.
func (c Channel) Mask() ChannelMask {
	return ChannelMask(c)
}

// MaskOf builds a mask from a channel list.
func MaskOf(chs ...Channel) ChannelMask {
	var m ChannelMask
	for _, ch := range chs {
		m |= ChannelMask(ch)
	}
	return m
}

// Has reports whether every bit of ch is in m.
func (m ChannelMask) Has(ch Channel) bool {
	return ch != ChannelNone && m&ChannelMask(ch) == ChannelMask(ch)
}

// Channels lists the channels in m, Rx0 first.
func (m ChannelMask) Channels() []Channel {
	var out []Channel
	for bit := uint32(1); bit <= uint32(ORx1); bit <<= 1 {
		if uint32(m)&bit != 0 {
			out = append(out, Channel(bit))
		}
	}
	return out
}

// Rx returns the Rx subset of m.
func (m ChannelMask) Rx() ChannelMask { return m & RxMaskAll }

// Orx returns the ORx subset of m.
func (m ChannelMask) Orx() ChannelMask { return m & OrxMaskAll }

// Count returns the number of channels in m.
func (m ChannelMask) Count() int { return bits.OnesCount32(uint32(m)) }

func (m ChannelMask) String() string {
	chs := m.Channels()
	if len(chs) == 0 {
		return "none"
	}
	names := make([]string, len(chs))
	for i, ch := range chs {
		names[i] = ch.String()
	}
	return strings.Join(names, "|")
}

// blockAddrs holds every sub-block base address of one channel.
type blockAddrs struct {
	dig       uint32
	funcs     uint32
	ddc       [NumDdcBands]uint32
	analogI   uint32
	analogQ   uint32
	gainTable uint32
}

// buildAddressMap resolves the block bases of every initialized channel once.
func buildAddressMap(initialized ChannelMask) map[Channel]blockAddrs {
	addrs := make(map[Channel]blockAddrs)
	for _, ch := range initialized.Channels() {
		idx := ch.index()
		switch {
		case ch.IsRx():
			addrs[ch] = blockAddrs{
				dig:       rxDigBase[idx],
				funcs:     rxFuncsBase[idx],
				ddc:       [NumDdcBands]uint32{rxDdcBase[idx][0], rxDdcBase[idx][1]},
				analogI:   rxAnalogBase[idx][0],
				analogQ:   rxAnalogBase[idx][1],
				gainTable: rxGainTableBase[idx],
			}
		case ch.IsOrx():
			addrs[ch] = blockAddrs{dig: orxDigBase[idx]}
		}
	}
	return addrs
}

func (d *Device) lookupRx(op string, ch Channel) (blockAddrs, error) {
	if !ch.IsRx() {
		return blockAddrs{}, invalidChannel(op, ch, "not an Rx channel")
	}
	a, ok := d.addrs[ch]
	if !ok {
		return blockAddrs{}, invalidChannel(op, ch, "channel not initialized")
	}
	return a, nil
}

// ResolveRxDigAddr returns the Dig block base of an initialized Rx channel.
func (d *Device) ResolveRxDigAddr(ch Channel) (uint32, error) {
	a, err := d.lookupRx("ResolveRxDigAddr", ch)
	return a.dig, err
}

// ResolveOrxDigAddr returns the ORx Dig block base of an initialized ORx channel.
func (d *Device) ResolveOrxDigAddr(ch Channel) (uint32, error) {
	if !ch.IsOrx() {
		return 0, invalidChannel("ResolveOrxDigAddr", ch, "not an ORx channel")
	}
	a, ok := d.addrs[ch]
	if !ok {
		return 0, invalidChannel("ResolveOrxDigAddr", ch, "channel not initialized")
	}
	return a.dig, nil
}

// ResolveFuncsAddr returns the Funcs block base of an initialized Rx channel.
func (d *Device) ResolveFuncsAddr(ch Channel) (uint32, error) {
	a, err := d.lookupRx("ResolveFuncsAddr", ch)
	return a.funcs, err
}

// ResolveDdcAddr returns the DDC block base for band 0 or 1.
func (d *Device) ResolveDdcAddr(ch Channel, band int) (uint32, error) {
	a, err := d.lookupRx("ResolveDdcAddr", ch)
	if err != nil {
		return 0, err
	}
	if band < 0 || band >= NumDdcBands {
		return 0, invalidParam("ResolveDdcAddr", "band", "band %d out of range", band)
	}
	return a.ddc[band], nil
}

// ResolveAnalogIQAddrs returns the analog ADC I and Q register addresses.
func (d *Device) ResolveAnalogIQAddrs(ch Channel) (uint32, uint32, error) {
	a, err := d.lookupRx("ResolveAnalogIQAddrs", ch)
	return a.analogI, a.analogQ, err
}
