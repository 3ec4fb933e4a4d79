package adrv903x

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ProfileMask records which signal chain profiles were loaded.
type ProfileMask uint8

const (
	ProfileTx  ProfileMask = 0x1
	ProfileRx  ProfileMask = 0x2
	ProfileOrx ProfileMask = 0x4
)

func (p ProfileMask) String() string {
	var parts []string
	if p&ProfileTx != 0 {
		parts = append(parts, "tx")
	}
	if p&ProfileRx != 0 {
		parts = append(parts, "rx")
	}
	if p&ProfileOrx != 0 {
		parts = append(parts, "orx")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// State is the per-device information the formatter reads and maintains.
// InitializedChannels, ProfilesValid, and SiRev come from profile load and are
// never changed here. Rx3BitSlicerMode is owned by the data format code.
type State struct {
	InitializedChannels ChannelMask
	ProfilesValid       ProfileMask
	MinGainIndex        [NumRxChannels]uint8
	MaxGainIndex        [NumRxChannels]uint8
	Rx3BitSlicerMode    ChannelMask
	SiRev               uint8
}

// NewState returns a state with every channel initialized and all profiles valid.
func NewState() *State {
	s := &State{
		InitializedChannels: MaskAll,
		ProfilesValid:       ProfileTx | ProfileRx | ProfileOrx,
		SiRev:               siRevUseRin,
	}
	for i := range s.MinGainIndex {
		s.MinGainIndex[i] = MinRxGainTableIndex
		s.MaxGainIndex[i] = StartRxGainIndex
	}
	return s
}

// Device programs the Rx and ORx data formatters of one transceiver.
// A Device is not safe for concurrent use.
type Device struct {
	regs  RegisterPort
	gpio  SignalPort
	state *State
	addrs map[Channel]blockAddrs
	order binary.ByteOrder
	log   *slog.Logger
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the logger used for step tracing.
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) { d.log = l }
}

// WithByteOrder sets the byte order of the gain table memory. Default little endian.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(d *Device) { d.order = order }
}

// WithSignalPort replaces the on-chip GPIO crossbar router.
func WithSignalPort(p SignalPort) Option {
	return func(d *Device) { d.gpio = p }
}

// New creates a device over regs. state is retained and updated in place.
func New(regs RegisterPort, state *State, opts ...Option) (*Device, error) {
	if regs == nil {
		return nil, &Error{Kind: ErrNullPointer, Op: "New", Field: "regs"}
	}
	if state == nil {
		return nil, &Error{Kind: ErrNullPointer, Op: "New", Field: "state"}
	}

	d := &Device{
		regs:  regs,
		state: state,
		addrs: buildAddressMap(state.InitializedChannels),
		order: binary.LittleEndian,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.gpio == nil {
		d.gpio = NewGpioRouter(regs)
	}
	return d, nil
}

// State returns the device state.
func (d *Device) State() *State {
	return d.state
}

// Regs returns the register port the device was created with.
func (d *Device) Regs() RegisterPort {
	return d.regs
}

func (d *Device) readField(op string, base uint32, f Field) (uint32, error) {
	addr := base + f.Offset
	v, err := d.regs.ReadField(addr, f.Mask)
	if err != nil {
		return 0, registerIO(op, addr, f.Mask, fmt.Errorf("read %s: %w", f.Name, err))
	}
	return v, nil
}

func (d *Device) writeField(op string, base uint32, f Field, value uint32) error {
	addr := base + f.Offset
	if err := d.regs.WriteField(addr, f.Mask, value); err != nil {
		return registerIO(op, addr, f.Mask, fmt.Errorf("write %s: %w", f.Name, err))
	}
	return nil
}

// fieldWrite is one pending field assignment.
type fieldWrite struct {
	f     Field
	value uint32
}

// writeFields applies writes in order and stops at the first failure.
func (d *Device) writeFields(op string, base uint32, writes []fieldWrite) error {
	for _, w := range writes {
		if err := d.writeField(op, base, w.f, w.value); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) read32(op string, addr, mask uint32) (uint32, error) {
	v, err := d.regs.Read32(addr, mask)
	if err != nil {
		return 0, registerIO(op, addr, mask, err)
	}
	return v, nil
}

func (d *Device) write32(op string, addr, value, mask uint32) error {
	if err := d.regs.Write32(addr, value, mask); err != nil {
		return registerIO(op, addr, mask, err)
	}
	return nil
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
