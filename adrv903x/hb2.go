package adrv903x

// HB2 overload detector limits.
const (
	MaxHb2DurationCount  = 15
	MaxHb2ThresholdCount = 15
)

// Hb2OverloadCfg configures the half band 2 overload detector.
type Hb2OverloadCfg struct {
	ChannelMask    ChannelMask `json:"channel_mask" yaml:"channel_mask"`
	Enable         bool        `json:"enable" yaml:"enable"`
	SignalSelect   uint8       `json:"signal_select" yaml:"signal_select"`
	PowerMode      uint8       `json:"power_mode" yaml:"power_mode"`
	DurationCount  uint8       `json:"duration_count" yaml:"duration_count"`
	ThresholdCount uint8       `json:"threshold_count" yaml:"threshold_count"`
	HighThreshold  uint16      `json:"high_threshold" yaml:"high_threshold"`
	LowThreshold   uint16      `json:"low_threshold" yaml:"low_threshold"`
	UseRin         bool        `json:"use_rin" yaml:"use_rin"`
}

// RxHb2OverloadCfgSet programs the HB2 overload detector of every channel in each config.
func (d *Device) RxHb2OverloadCfgSet(cfgs []Hb2OverloadCfg) error {
	const op = "RxHb2OverloadCfgSet"
	if len(cfgs) == 0 {
		return invalidParam(op, "configs", "array size 0")
	}
	for _, cfg := range cfgs {
		if err := d.Hb2OverloadCfgRangeCheck(cfg); err != nil {
			return err
		}
	}
	for _, cfg := range cfgs {
		for _, ch := range cfg.ChannelMask.Channels() {
			if err := d.setHb2Overload(ch, cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Device) setHb2Overload(ch Channel, cfg Hb2OverloadCfg) error {
	const op = "RxHb2OverloadCfgSet"
	a, err := d.lookupRx(op, ch)
	if err != nil {
		return err
	}
	err = d.writeFields(op, a.dig, []fieldWrite{
		{fHb2OverloadSignalSelect, uint32(cfg.SignalSelect)},
		{fHb2OverloadPowerMode, uint32(cfg.PowerMode)},
		{fHb2OverloadDurationCount, uint32(cfg.DurationCount)},
		{fHb2OverloadThreshCount, uint32(cfg.ThresholdCount)},
		{fHb2HighThreshold, uint32(cfg.HighThreshold)},
		{fHb2LowThreshold, uint32(cfg.LowThreshold)},
		{fHb2OverloadEnable, b2u(cfg.Enable)},
	})
	if err != nil {
		return err
	}
	if d.state.SiRev >= siRevUseRin {
		rin := uint32(0)
		if cfg.UseRin {
			rin = analogUseRinMask
		}
		for _, addr := range [2]uint32{a.analogI, a.analogQ} {
			if err := d.write32(op, addr, rin, analogUseRinMask); err != nil {
				return err
			}
		}
	}
	d.log.Debug("hb2 overload configured", "channel", ch, "enable", cfg.Enable, "use_rin", cfg.UseRin)
	return nil
}

// RxHb2OverloadCfgGet reads back the HB2 overload detector of ch.
func (d *Device) RxHb2OverloadCfgGet(ch Channel) (Hb2OverloadCfg, error) {
	const op = "RxHb2OverloadCfgGet"
	a, err := d.lookupRx(op, ch)
	if err != nil {
		return Hb2OverloadCfg{}, err
	}
	v, err := d.readFieldSet(op, a.dig, fHb2OverloadEnable, fHb2OverloadSignalSelect,
		fHb2OverloadPowerMode, fHb2OverloadDurationCount, fHb2OverloadThreshCount,
		fHb2HighThreshold, fHb2LowThreshold)
	if err != nil {
		return Hb2OverloadCfg{}, err
	}
	cfg := Hb2OverloadCfg{
		ChannelMask:    ch.Mask(),
		Enable:         v[0] != 0,
		SignalSelect:   uint8(v[1]),
		PowerMode:      uint8(v[2]),
		DurationCount:  uint8(v[3]),
		ThresholdCount: uint8(v[4]),
		HighThreshold:  uint16(v[5]),
		LowThreshold:   uint16(v[6]),
	}
	if d.state.SiRev >= siRevUseRin {
		rin, err := d.read32(op, a.analogI, analogUseRinMask)
		if err != nil {
			return cfg, err
		}
		cfg.UseRin = rin != 0
	}
	return cfg, nil
}
