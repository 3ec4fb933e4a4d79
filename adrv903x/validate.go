package adrv903x

import "fmt"

// checkMask rejects empty masks, unknown bits, and channel categories whose
// profile was not loaded.
func (d *Device) checkMask(op string, mask ChannelMask) error {
	if mask == 0 {
		return invalidParam(op, "channel_mask", "empty channel mask")
	}
	if mask&^MaskAll != 0 {
		return invalidParam(op, "channel_mask", "unknown channel bits 0x%03X", uint32(mask&^MaskAll))
	}
	if mask.Rx() != 0 && d.state.ProfilesValid&ProfileRx == 0 {
		return invalidParam(op, "channel_mask", "Rx channels %s requested but no Rx profile is loaded", mask.Rx())
	}
	if mask.Orx() != 0 && d.state.ProfilesValid&ProfileOrx == 0 {
		return invalidParam(op, "channel_mask", "ORx channels %s requested but no ORx profile is loaded", mask.Orx())
	}
	return nil
}

func (d *Device) checkRxOnlyMask(op string, mask ChannelMask) error {
	if err := d.checkMask(op, mask); err != nil {
		return err
	}
	if mask.Orx() != 0 {
		return invalidParam(op, "channel_mask", "ORx channels %s not supported", mask.Orx())
	}
	return nil
}

// checkRxChannel requires ch to be one initialized Rx channel.
func (d *Device) checkRxChannel(op string, ch Channel) error {
	_, err := d.lookupRx(op, ch)
	return err
}

func (d *Device) checkInitialized(op string, ch Channel) error {
	if !ch.IsRx() && !ch.IsOrx() {
		return invalidChannel(op, ch, "not a single Rx or ORx channel")
	}
	if !d.state.InitializedChannels.Has(ch) {
		return invalidChannel(op, ch, "channel not initialized")
	}
	return nil
}

// ValidateDataFormat checks one data format request without touching hardware.
func (d *Device) ValidateDataFormat(cfg RxDataFormatConfig) error {
	const op = "RxDataFormatSet"
	if cfg.Format == nil {
		return &Error{Kind: ErrNullPointer, Op: op, Field: "format"}
	}
	if err := d.checkMask(op, cfg.ChannelMask); err != nil {
		return err
	}
	mode := cfg.Format.Mode()
	if cfg.ChannelMask.Orx() != 0 && mode != GainCompDisabled {
		return invalidParam(op, "channel_mask", "ORx channels %s only support %s, got %s",
			cfg.ChannelMask.Orx(), GainCompDisabled, mode)
	}

	switch f := cfg.Format.(type) {
	case GainCompDisabledFormat:
		return nil
	case FloatingPointFormat:
		return validateFloatingPoint(op, f.Config)
	case InternalSlicerFormat:
		return validateInteger(op, cfg.ChannelMask, f.SlicerMode, f.Integer, f.Slicer)
	case ExternalSlicerFormat:
		return nil
	case EmbOverloadFormat:
		return validateEmbOverload(op, f.Integer, f.Monitor)
	}
	return invalidParam(op, "format", "unsupported format %T", cfg.Format)
}

func validateFloatingPoint(op string, c FloatingPointConfig) error {
	switch {
	case !validEnum(c.DataFormat, fpDataFormatNames):
		return invalidParam(op, "fp_data_format", "unsupported value %d", uint8(c.DataFormat))
	case !validEnum(c.RoundMode, fpRoundModeNames):
		return invalidParam(op, "fp_round_mode", "unsupported value %d", uint8(c.RoundMode))
	case !validEnum(c.ExponentBits, fpExponentBitsNames):
		return invalidParam(op, "fp_exponent_bits", "unsupported value %d", uint8(c.ExponentBits))
	case !validEnum(c.AttenSteps, fpAttenStepsNames):
		return invalidParam(op, "fp_atten_steps", "unsupported value %d", uint8(c.AttenSteps))
	case !validEnum(c.EncodeNan, fpNanEncodeNames):
		return invalidParam(op, "fp_encode_nan", "unsupported value %d", uint8(c.EncodeNan))
	case !validEnum(c.HideLeadingOne, fpLeadingOneNames):
		return invalidParam(op, "fp_hide_leading_one", "unsupported value %d", uint8(c.HideLeadingOne))
	}
	return nil
}

func validateIntegerFields(op string, ic IntegerConfig) error {
	switch {
	case !validEnum(ic.SampleResolution, sampleResolutionNames):
		return invalidParam(op, "sample_resolution", "unsupported value %d", uint8(ic.SampleResolution))
	case !validEnum(ic.EmbeddedBits, embeddedBitsNames):
		return invalidParam(op, "embedded_bits", "unsupported value %d", uint8(ic.EmbeddedBits))
	case !validEnum(ic.Parity, parityNames):
		return invalidParam(op, "parity", "unsupported value %d", uint8(ic.Parity))
	case !validEnum(ic.EmbeddedPosition, embeddedPositionNames):
		return invalidParam(op, "embedded_position", "unsupported value %d", uint8(ic.EmbeddedPosition))
	}
	if ic.Parity != ParityNone {
		if !ic.EmbeddedBits.is3Slicer() {
			return invalidParam(op, "parity", "parity %s requires a 3-bit slicer embedding, got %s",
				ic.Parity, ic.EmbeddedBits)
		}
		if !ic.SampleResolution.is16Bit() {
			return invalidParam(op, "parity", "parity %s requires 16 bit resolution, got %s",
				ic.Parity, ic.SampleResolution)
		}
	}
	if ic.EmbeddedBits == Embed1BitMsb && !ic.SampleResolution.isSigned() {
		return invalidParam(op, "embedded_bits", "%s requires signed magnitude resolution, got %s",
			ic.EmbeddedBits, ic.SampleResolution)
	}
	return nil
}

func validateInteger(op string, mask ChannelMask, mode DataFormatMode, ic IntegerConfig, sc SlicerConfig) error {
	if !mode.isIntegerMode() {
		return invalidParam(op, "mode", "%s is not an internal slicer mode", mode)
	}
	if err := validateIntegerFields(op, ic); err != nil {
		return err
	}
	if !validEnum(sc.IntStepSize, slicerStepNames) {
		return invalidParam(op, "int_step_size", "unsupported value %d", uint8(sc.IntStepSize))
	}

	n := mode.slicerPins()
	if n == 0 {
		return nil
	}
	if mask.Count() != 1 {
		return invalidParam(op, "channel_mask", "%s can only be set on one channel at a time, got %s", mode, mask)
	}
	seen := make(map[GpioPin]bool, n)
	for i, pin := range sc.IntGpioSelect {
		if i >= n {
			if pin != GpioInvalid {
				return invalidParam(op, "int_gpio_select", "%s uses %d gpios, slot %d must be unset", mode, n, i)
			}
			continue
		}
		if !pin.Valid() {
			return invalidParam(op, "int_gpio_select", "%s needs a valid gpio in slot %d", mode, i)
		}
		if seen[pin] {
			return invalidParam(op, "int_gpio_select", "%s selected more than once", pin)
		}
		seen[pin] = true
	}
	return nil
}

func validateEmbOverload(op string, ic IntegerConfig, mc EmbOverloadMonitorConfig) error {
	if err := validateIntegerFields(op, ic); err != nil {
		return err
	}
	if ic.SampleResolution != Res16BitTwosComplement {
		return invalidParam(op, "sample_resolution", "embedded overload monitor requires %s, got %s",
			Res16BitTwosComplement, ic.SampleResolution)
	}
	if ic.EmbeddedBits != EmbedNone {
		return invalidParam(op, "embedded_bits", "embedded overload monitor uses the slicer bits, got %s",
			ic.EmbeddedBits)
	}
	for i, s := range mc.selectors() {
		if !validEnum(s, embMonitorSourceNames) {
			return invalidParam(op, "monitor_source", "selector %d: unsupported value %d", i, uint8(s))
		}
	}
	if mc.uses(EmbMonApdHigh) && !validEnum(mc.ApdHighSrc, apdSourceNames) {
		return invalidParam(op, "apd_high_src", "unsupported value %d", uint8(mc.ApdHighSrc))
	}
	if mc.uses(EmbMonApdLow) && !validEnum(mc.ApdLowSrc, apdSourceNames) {
		return invalidParam(op, "apd_low_src", "unsupported value %d", uint8(mc.ApdLowSrc))
	}
	if mc.uses(EmbMonHb2High) && !validEnum(mc.Hb2HighSrc, hb2HighSourceNames) {
		return invalidParam(op, "hb2_high_src", "unsupported value %d", uint8(mc.Hb2HighSrc))
	}
	if mc.uses(EmbMonHb2Low) && !validEnum(mc.Hb2LowSrc, hb2LowSourceNames) {
		return invalidParam(op, "hb2_low_src", "unsupported value %d", uint8(mc.Hb2LowSrc))
	}
	return nil
}

func checkGainRows(op string, rows []GainTableRow) error {
	for i, r := range rows {
		if r.DigGain < MinDigGain || r.DigGain > MaxDigGain {
			return invalidParam(op, "dig_gain", "row %d: %d outside [%d, %d]", i, r.DigGain, MinDigGain, MaxDigGain)
		}
		if r.ExtControl > MaxExtControl {
			return invalidParam(op, "ext_control", "row %d: %d above %d", i, r.ExtControl, MaxExtControl)
		}
	}
	return nil
}

// RxGainTableWriteRangeCheck validates a gain table write of rows ending at
// gainIndexOffset.
func (d *Device) RxGainTableWriteRangeCheck(mask ChannelMask, gainIndexOffset uint8, rows []GainTableRow) error {
	const op = "RxGainTableWrite"
	if err := d.checkMask(op, mask); err != nil {
		return err
	}
	if len(rows) == 0 {
		return invalidParam(op, "rows", "array size 0")
	}
	if gainIndexOffset < MinRxGainTableIndex {
		return invalidParam(op, "gain_index_offset", "%d below %d", gainIndexOffset, MinRxGainTableIndex)
	}
	if window := int(gainIndexOffset) - MinRxGainTableIndex + 1; len(rows) > window {
		return invalidParam(op, "rows", "%d rows do not fit below offset %d (max %d)", len(rows), gainIndexOffset, window)
	}
	return checkGainRows(op, rows)
}

// RxGainTableReadRangeCheck validates a gain table read.
func (d *Device) RxGainTableReadRangeCheck(ch Channel, gainIndexOffset uint8, maxRows int) error {
	const op = "RxGainTableRead"
	if err := d.checkRxChannel(op, ch); err != nil {
		return err
	}
	if maxRows <= 0 {
		return invalidParam(op, "max_rows", "array size %d", maxRows)
	}
	if gainIndexOffset < d.state.MinGainIndex[ch.index()] {
		return invalidParam(op, "gain_index_offset", "%d below channel min gain index %d",
			gainIndexOffset, d.state.MinGainIndex[ch.index()])
	}
	return nil
}

// RxGainSetRangeCheck validates manual gain index requests.
func (d *Device) RxGainSetRangeCheck(gains []RxGain) error {
	const op = "RxGainSet"
	if len(gains) == 0 {
		return invalidParam(op, "gains", "array size 0")
	}
	for _, g := range gains {
		if err := d.checkRxOnlyMask(op, g.ChannelMask); err != nil {
			return err
		}
		for _, ch := range g.ChannelMask.Channels() {
			if err := d.checkRxChannel(op, ch); err != nil {
				return err
			}
			lo, hi := d.state.MinGainIndex[ch.index()], d.state.MaxGainIndex[ch.index()]
			if g.GainIndex < lo || g.GainIndex > hi {
				return invalidParam(op, "gain_index", "%s: %d outside [%d, %d]", ch, g.GainIndex, lo, hi)
			}
		}
	}
	return nil
}

// RxGainGetRangeCheck validates a gain readback request.
func (d *Device) RxGainGetRangeCheck(ch Channel) error {
	return d.checkRxChannel("RxGainGet", ch)
}

// RxMinMaxGainIndexSetRangeCheck validates new gain index bounds.
func (d *Device) RxMinMaxGainIndexSetRangeCheck(mask ChannelMask, minIndex, maxIndex uint8) error {
	const op = "RxMinMaxGainIndexSet"
	if err := d.checkRxOnlyMask(op, mask); err != nil {
		return err
	}
	if minIndex < MinRxGainTableIndex {
		return invalidParam(op, "min_gain_index", "%d below %d", minIndex, MinRxGainTableIndex)
	}
	if minIndex >= maxIndex {
		return invalidParam(op, "min_gain_index", "min %d must be below max %d", minIndex, maxIndex)
	}
	return nil
}

// DecPowerCfgRangeCheck validates an Rx decimated power configuration.
func (d *Device) DecPowerCfgRangeCheck(cfg DecPowerCfg) error {
	const op = "DecPowerCfgSet"
	if err := d.checkRxOnlyMask(op, cfg.ChannelMask); err != nil {
		return err
	}
	if !validEnum(cfg.Block, decPowerBlockNames) {
		return invalidParam(op, "block", "unsupported value %d", uint8(cfg.Block))
	}
	if cfg.InputSelect > MaxDecPowerInputSelect {
		return invalidParam(op, "input_select", "%d above %d", cfg.InputSelect, MaxDecPowerInputSelect)
	}
	if cfg.InputSelect != 0 && cfg.Block == DecPowerMain {
		return invalidParam(op, "input_select", "input select is only available on DDC bands")
	}
	return checkDecPowerDuration(op, cfg.Duration)
}

// OrxDecPowerCfgRangeCheck validates an ORx decimated power configuration.
func (d *Device) OrxDecPowerCfgRangeCheck(cfg OrxDecPowerCfg) error {
	const op = "OrxDecPowerCfgSet"
	if err := d.checkMask(op, cfg.ChannelMask); err != nil {
		return err
	}
	if cfg.ChannelMask.Rx() != 0 {
		return invalidParam(op, "channel_mask", "Rx channels %s not supported", cfg.ChannelMask.Rx())
	}
	return checkDecPowerDuration(op, cfg.Duration)
}

func checkDecPowerDuration(op string, duration uint8) error {
	if duration > MaxDecPowerDuration {
		return invalidParam(op, "duration", "%d above %d", duration, MaxDecPowerDuration)
	}
	return nil
}

// Hb2OverloadCfgRangeCheck validates an HB2 overload detector configuration.
func (d *Device) Hb2OverloadCfgRangeCheck(cfg Hb2OverloadCfg) error {
	const op = "RxHb2OverloadCfgSet"
	if err := d.checkRxOnlyMask(op, cfg.ChannelMask); err != nil {
		return err
	}
	switch {
	case cfg.SignalSelect > 1:
		return invalidParam(op, "signal_select", "%d above 1", cfg.SignalSelect)
	case cfg.PowerMode > 1:
		return invalidParam(op, "power_mode", "%d above 1", cfg.PowerMode)
	case cfg.DurationCount > MaxHb2DurationCount:
		return invalidParam(op, "duration_count", "%d above %d", cfg.DurationCount, MaxHb2DurationCount)
	case cfg.ThresholdCount > MaxHb2ThresholdCount:
		return invalidParam(op, "threshold_count", "%d above %d", cfg.ThresholdCount, MaxHb2ThresholdCount)
	case cfg.LowThreshold > cfg.HighThreshold:
		return invalidParam(op, "low_threshold", "low threshold %d above high threshold %d",
			cfg.LowThreshold, cfg.HighThreshold)
	}
	if cfg.UseRin && d.state.SiRev < siRevUseRin {
		return invalidParam(op, "use_rin", "not supported on silicon revision %s", siRevString(d.state.SiRev))
	}
	return nil
}

func siRevString(rev uint8) string {
	return fmt.Sprintf("%c%d", 'A'+rune(rev>>4)-0xA, rev&0x0F)
}
