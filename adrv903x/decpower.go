package adrv903x

// Decimated power limits.
const (
	MaxDecPowerDuration    = 20
	MaxDecPowerInputSelect = 2

	// decPowerStepMdBFS is the readback LSB in milli-dBFS.
	decPowerStepMdBFS = 250
)

// DecPowerBlock selects which decimated power meter of an Rx channel is used.
type DecPowerBlock uint8

const (
	DecPowerBand0 DecPowerBlock = iota
	DecPowerBand1
	DecPowerMain
)

var decPowerBlockNames = map[DecPowerBlock]string{
	DecPowerBand0: "band0",
	DecPowerBand1: "band1",
	DecPowerMain:  "main",
}

func (b DecPowerBlock) String() string { return enumString(b, decPowerBlockNames) }

func (b DecPowerBlock) MarshalText() ([]byte, error) {
	return enumText(b, decPowerBlockNames, "dec power block")
}

func (b *DecPowerBlock) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, decPowerBlockNames, "dec power block")
	*b = v
	return err
}

// DecPowerCfg configures an Rx decimated power meter.
type DecPowerCfg struct {
	ChannelMask     ChannelMask   `json:"channel_mask" yaml:"channel_mask"`
	Block           DecPowerBlock `json:"block" yaml:"block"`
	Enable          bool          `json:"enable" yaml:"enable"`
	InputSelect     uint8         `json:"input_select" yaml:"input_select"`
	Duration        uint8         `json:"duration" yaml:"duration"`
	PeakToPowerMode bool          `json:"peak_to_power_mode" yaml:"peak_to_power_mode"`
}

// OrxDecPowerCfg configures an ORx decimated power meter.
type OrxDecPowerCfg struct {
	ChannelMask     ChannelMask `json:"channel_mask" yaml:"channel_mask"`
	Enable          bool        `json:"enable" yaml:"enable"`
	Duration        uint8       `json:"duration" yaml:"duration"`
	PeakToPowerMode bool        `json:"peak_to_power_mode" yaml:"peak_to_power_mode"`
}

// decPowerFields is the field set of one power meter.
type decPowerFields struct {
	enable, inputSel, duration, peak, value Field
	hasInputSel                             bool
}

var (
	ddcDecPowerFields = decPowerFields{
		enable: fDdcDecPowerEnable, inputSel: fDdcDecPowerInputSel, duration: fDdcDecPowerDuration,
		peak: fDdcPeakToPowerMode, value: fDdcDecPowerValue, hasInputSel: true,
	}
	digDecPowerFields = decPowerFields{
		enable: fDigDecPowerEnable, duration: fDigDecPowerDuration,
		peak: fDigPeakToPowerMode, value: fDigDecPowerValue,
	}
	orxDecPowerFields = decPowerFields{
		enable: fOrxDecPowerEnable, duration: fOrxDecPowerDuration,
		peak: fOrxPeakToPowerMode, value: fOrxDecPowerValue,
	}
)

// decPowerTarget resolves the block base and field set of a power meter.
func (d *Device) decPowerTarget(op string, ch Channel, block DecPowerBlock) (uint32, decPowerFields, error) {
	if ch.IsOrx() {
		base, err := d.ResolveOrxDigAddr(ch)
		return base, orxDecPowerFields, err
	}
	a, err := d.lookupRx(op, ch)
	if err != nil {
		return 0, decPowerFields{}, err
	}
	switch block {
	case DecPowerBand0:
		return a.ddc[0], ddcDecPowerFields, nil
	case DecPowerBand1:
		return a.ddc[1], ddcDecPowerFields, nil
	case DecPowerMain:
		return a.dig, digDecPowerFields, nil
	}
	return 0, decPowerFields{}, invalidParam(op, "block", "unsupported value %d", uint8(block))
}

func (d *Device) writeDecPower(op string, base uint32, f decPowerFields, enable bool, inputSel, duration uint8, peak bool) error {
	writes := []fieldWrite{
		{f.duration, uint32(duration)},
		{f.peak, b2u(peak)},
	}
	if f.hasInputSel {
		writes = append(writes, fieldWrite{f.inputSel, uint32(inputSel)})
	}
	writes = append(writes, fieldWrite{f.enable, b2u(enable)})
	return d.writeFields(op, base, writes)
}

// DecPowerCfgSet programs Rx decimated power meters.
func (d *Device) DecPowerCfgSet(cfgs []DecPowerCfg) error {
	const op = "DecPowerCfgSet"
	if len(cfgs) == 0 {
		return invalidParam(op, "configs", "array size 0")
	}
	for _, cfg := range cfgs {
		if err := d.DecPowerCfgRangeCheck(cfg); err != nil {
			return err
		}
	}
	for _, cfg := range cfgs {
		for _, ch := range cfg.ChannelMask.Channels() {
			base, f, err := d.decPowerTarget(op, ch, cfg.Block)
			if err != nil {
				return err
			}
			if err := d.writeDecPower(op, base, f, cfg.Enable, cfg.InputSelect, cfg.Duration, cfg.PeakToPowerMode); err != nil {
				return err
			}
			d.log.Debug("dec power configured", "channel", ch, "block", cfg.Block, "enable", cfg.Enable)
		}
	}
	return nil
}

// DecPowerCfgGet reads back one Rx decimated power meter.
func (d *Device) DecPowerCfgGet(ch Channel, block DecPowerBlock) (DecPowerCfg, error) {
	const op = "DecPowerCfgGet"
	if !ch.IsRx() {
		return DecPowerCfg{}, invalidChannel(op, ch, "not an Rx channel")
	}
	base, f, err := d.decPowerTarget(op, ch, block)
	if err != nil {
		return DecPowerCfg{}, err
	}
	v, err := d.readFieldSet(op, base, f.enable, f.duration, f.peak)
	if err != nil {
		return DecPowerCfg{}, err
	}
	cfg := DecPowerCfg{
		ChannelMask:     ch.Mask(),
		Block:           block,
		Enable:          v[0] != 0,
		Duration:        uint8(v[1]),
		PeakToPowerMode: v[2] != 0,
	}
	if f.hasInputSel {
		sel, err := d.readField(op, base, f.inputSel)
		if err != nil {
			return cfg, err
		}
		cfg.InputSelect = uint8(sel)
	}
	return cfg, nil
}

// OrxDecPowerCfgSet programs ORx decimated power meters.
func (d *Device) OrxDecPowerCfgSet(cfgs []OrxDecPowerCfg) error {
	const op = "OrxDecPowerCfgSet"
	if len(cfgs) == 0 {
		return invalidParam(op, "configs", "array size 0")
	}
	for _, cfg := range cfgs {
		if err := d.OrxDecPowerCfgRangeCheck(cfg); err != nil {
			return err
		}
	}
	for _, cfg := range cfgs {
		for _, ch := range cfg.ChannelMask.Channels() {
			base, f, err := d.decPowerTarget(op, ch, DecPowerMain)
			if err != nil {
				return err
			}
			if err := d.writeDecPower(op, base, f, cfg.Enable, 0, cfg.Duration, cfg.PeakToPowerMode); err != nil {
				return err
			}
			d.log.Debug("orx dec power configured", "channel", ch, "enable", cfg.Enable)
		}
	}
	return nil
}

// OrxDecPowerCfgGet reads back the decimated power meter of an ORx channel.
func (d *Device) OrxDecPowerCfgGet(ch Channel) (OrxDecPowerCfg, error) {
	const op = "OrxDecPowerCfgGet"
	if !ch.IsOrx() {
		return OrxDecPowerCfg{}, invalidChannel(op, ch, "not an ORx channel")
	}
	base, f, err := d.decPowerTarget(op, ch, DecPowerMain)
	if err != nil {
		return OrxDecPowerCfg{}, err
	}
	v, err := d.readFieldSet(op, base, f.enable, f.duration, f.peak)
	if err != nil {
		return OrxDecPowerCfg{}, err
	}
	return OrxDecPowerCfg{
		ChannelMask:     ch.Mask(),
		Enable:          v[0] != 0,
		Duration:        uint8(v[1]),
		PeakToPowerMode: v[2] != 0,
	}, nil
}

// DecPowerGet returns the last decimated power measurement of ch in mdBFS.
// block is ignored for ORx channels.
func (d *Device) DecPowerGet(ch Channel, block DecPowerBlock) (int32, error) {
	const op = "DecPowerGet"
	base, f, err := d.decPowerTarget(op, ch, block)
	if err != nil {
		return 0, err
	}
	raw, err := d.readField(op, base, f.value)
	if err != nil {
		return 0, err
	}
	return -int32(raw) * decPowerStepMdBFS, nil
}
