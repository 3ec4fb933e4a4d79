package adrv903x

// Block base addresses, indexed by channel ordinal.
var (
	rxDigBase = [NumRxChannels]uint32{
		0x60030000, 0x60130000, 0x60230000, 0x60330000,
		0x60430000, 0x60530000, 0x60630000, 0x60730000,
	}
	rxFuncsBase = [NumRxChannels]uint32{
		0x60040000, 0x60140000, 0x60240000, 0x60340000,
		0x60440000, 0x60540000, 0x60640000, 0x60740000,
	}
	rxDdcBase = [NumRxChannels][NumDdcBands]uint32{
		{0x60060000, 0x60070000}, {0x60160000, 0x60170000},
		{0x60260000, 0x60270000}, {0x60360000, 0x60370000},
		{0x60460000, 0x60470000}, {0x60560000, 0x60570000},
		{0x60660000, 0x60670000}, {0x60760000, 0x60770000},
	}
	// ADC I and Q configuration registers (raw 32-bit access).
	rxAnalogBase = [NumRxChannels][2]uint32{
		{0x60098010, 0x60098410}, {0x60198010, 0x60198410},
		{0x60298010, 0x60298410}, {0x60398010, 0x60398410},
		{0x60498010, 0x60498410}, {0x60598010, 0x60598410},
		{0x60698010, 0x60698410}, {0x60798010, 0x60798410},
	}
	rxGainTableBase = [NumRxChannels]uint32{
		0x60010000, 0x60110000, 0x60210000, 0x60310000,
		0x60410000, 0x60510000, 0x60610000, 0x60710000,
	}
	orxDigBase = [NumOrxChannels]uint32{0x61210000, 0x61310000}
)

// GPIO crossbar: one 32-bit source-select register per pin.
const (
	gpioCrossbarBase   uint32 = 0x47000100
	gpioCrossbarStride uint32 = 4
	gpioSelSignalMask  uint32 = 0x000000FF
	gpioSelChannelMask uint32 = 0x00000F00
)

// HB2 overload "use rin" bit in the ADC I/Q registers; present from silicon B0.
const (
	analogUseRinMask uint32 = 0x00000200
	siRevUseRin      uint8  = 0xB0
)

// Block names a register sub-block of a channel.
type Block int

const (
	BlockDdc Block = iota
	BlockFuncs
	BlockDig
	BlockOrxDig
)

func (b Block) String() string {
	switch b {
	case BlockDdc:
		return "ddc"
	case BlockFuncs:
		return "funcs"
	case BlockDig:
		return "dig"
	case BlockOrxDig:
		return "orx_dig"
	}
	return "unknown"
}

// Field is a named bit field at Offset from its block base.
type Field struct {
	Name   string
	Block  Block
	Offset uint32
	Mask   uint32
	Desc   string
}

// DDC formatter fields. Each Rx channel has two DDC bands with identical layout.
var (
	fGainCompEnable       = Field{"gain_comp_enable", BlockDdc, 0x000, 0x00000001, "Gain compensation enable"}
	fFpEnable             = Field{"fp_enable", BlockDdc, 0x000, 0x00000002, "Floating point formatter enable"}
	fSlicerPinControlMode = Field{"slicer_pin_ctrl_mode", BlockDdc, 0x000, 0x00000004, "Slicer pin control (0=internal, 1=external)"}
	fStatic3BitSlicerMode = Field{"static_3bit_slicer_mode", BlockDdc, 0x000, 0x00000008, "Static 3-bit slicer mode enable"}

	fIntDataFormat        = Field{"int_data_format", BlockDdc, 0x004, 0x00000001, "Integer format (0=2s complement, 1=signed magnitude)"}
	fIntDataResolution    = Field{"int_data_resolution", BlockDdc, 0x004, 0x00000002, "Integer resolution (0=12 bit, 1=16 bit)"}
	fIntEmbedSlicer       = Field{"int_embed_slicer", BlockDdc, 0x004, 0x00000004, "Embed slicer bits in sample word"}
	fIntEmbedSlicerPos    = Field{"int_embed_slicer_pos", BlockDdc, 0x004, 0x00000008, "Embedded slicer position (0=MSB, 1=LSB)"}
	fIntEmbedSlicerNumber = Field{"int_embed_slicer_number", BlockDdc, 0x004, 0x00000010, "Embedded slicer bit count (0=1 bit, 1=2 bits)"}
	fIntParitySupport     = Field{"int_parity_support", BlockDdc, 0x004, 0x00000020, "3-bit slicer parity support"}
	fIntEvenParity        = Field{"int_even_parity", BlockDdc, 0x004, 0x00000040, "Parity select (0=even, 1=odd)"}
	fIntSlicerLsbOnQ      = Field{"int_slicer_lsb_on_q", BlockDdc, 0x004, 0x00000080, "Lower slicer nibble carried on Q"}

	fSlicerPinControlStep = Field{"slicer_pin_ctrl_step", BlockDdc, 0x008, 0x00000007, "Internal slicer step size"}
	fMaxSlicerOverride    = Field{"max_slicer_override", BlockDdc, 0x008, 0x00000008, "Max slicer override enable"}
	fMaxSlicer            = Field{"max_slicer", BlockDdc, 0x008, 0x000000F0, "Max slicer value"}

	fFpRoundMode      = Field{"fp_round_mode", BlockDdc, 0x00C, 0x00000007, "Floating point round mode"}
	fFpFormat         = Field{"fp_format", BlockDdc, 0x00C, 0x00000008, "Floating point field order"}
	fFpNanEncEnable   = Field{"fp_nan_enc_en", BlockDdc, 0x00C, 0x00000010, "Floating point NaN encode"}
	fFpExponentBits   = Field{"fp_exponent_bits", BlockDdc, 0x00C, 0x00000060, "Floating point exponent width"}
	fFpHideLeadingOne = Field{"fp_hide_leading_one", BlockDdc, 0x00C, 0x00000080, "Floating point hidden leading one"}
	fFpIntDataAtten   = Field{"fp_int_data_atten", BlockDdc, 0x00C, 0x00000700, "Floating point attenuation steps"}

	fMonFormatI0 = Field{"rx_mon_format_i0", BlockDdc, 0x010, 0x00000007, "Embedded monitor source, LSB of I"}
	fMonFormatI1 = Field{"rx_mon_format_i1", BlockDdc, 0x010, 0x00000070, "Embedded monitor source, LSB+1 of I"}
	fMonFormatQ0 = Field{"rx_mon_format_q0", BlockDdc, 0x010, 0x00000700, "Embedded monitor source, LSB of Q"}
	fMonFormatQ1 = Field{"rx_mon_format_q1", BlockDdc, 0x010, 0x00007000, "Embedded monitor source, LSB+1 of Q"}

	fDdcDecPowerEnable   = Field{"dec_power_enable", BlockDdc, 0x020, 0x00000001, "Decimated power measurement enable"}
	fDdcDecPowerInputSel = Field{"dec_power_input_sel", BlockDdc, 0x020, 0x00000006, "Decimated power input select"}
	fDdcDecPowerDuration = Field{"dec_power_duration", BlockDdc, 0x020, 0x00001F00, "Decimated power measurement duration"}
	fDdcPeakToPowerMode  = Field{"dec_power_peak_mode", BlockDdc, 0x020, 0x00010000, "Peak-to-power mode"}
	fDdcDecPowerValue    = Field{"dec_power_value", BlockDdc, 0x024, 0x000000FF, "Decimated power readback"}
)

// Funcs block fields.
var (
	fApdHighSrcSel = Field{"apd_high_src_sel", BlockFuncs, 0x100, 0x00000001, "APD high overload source"}
	fApdLowSrcSel  = Field{"apd_low_src_sel", BlockFuncs, 0x100, 0x00000002, "APD low overload source"}
	fHb2HighSrcSel = Field{"hb2_high_src_sel", BlockFuncs, 0x100, 0x00000004, "HB2 high overload source"}
	fHb2LowSrcSel  = Field{"hb2_low_src_sel", BlockFuncs, 0x100, 0x00000018, "HB2 low overload source"}
	fInvertHb2Flag = Field{"invert_hb2_flag", BlockFuncs, 0x100, 0x00000020, "Invert HB2 flag"}
	fInvertApdFlag = Field{"invert_apd_flag", BlockFuncs, 0x100, 0x00000040, "Invert APD flag"}

	fCddcIntDataFormat        = Field{"cddc_int_data_format", BlockFuncs, 0x200, 0x00000001, "CDDC integer format"}
	fCddcIntDataResolution    = Field{"cddc_int_data_resolution", BlockFuncs, 0x200, 0x00000002, "CDDC integer resolution"}
	fCddcIntEmbedSlicer       = Field{"cddc_int_embed_slicer", BlockFuncs, 0x200, 0x00000004, "CDDC embed slicer bits"}
	fCddcIntEmbedSlicerPos    = Field{"cddc_int_embed_slicer_pos", BlockFuncs, 0x200, 0x00000008, "CDDC embedded slicer position"}
	fCddcIntEmbedSlicerNumber = Field{"cddc_int_embed_slicer_number", BlockFuncs, 0x200, 0x00000010, "CDDC embedded slicer bit count"}
	fCddcIntParitySupport     = Field{"cddc_int_parity_support", BlockFuncs, 0x200, 0x00000020, "CDDC parity support"}
	fCddcIntEvenParity        = Field{"cddc_int_even_parity", BlockFuncs, 0x200, 0x00000040, "CDDC parity select"}
	fCddcIntSlicerLsbOnQ      = Field{"cddc_int_slicer_lsb_on_q", BlockFuncs, 0x200, 0x00000080, "CDDC lower nibble on Q"}
	fCddcStatic3BitSlicerMode = Field{"cddc_static_3bit_slicer_mode", BlockFuncs, 0x200, 0x00000100, "CDDC static 3-bit slicer mode"}
)

// Rx Dig block fields.
var (
	fRoutClkDivideRatio        = Field{"rout_clk_divide_ratio", BlockDig, 0x040, 0x00000007, "Rx output clock divider"}
	fDdc1Hb1OutClkDivideRatio  = Field{"ddc1_hb1_out_clk_divide_ratio", BlockDig, 0x040, 0x00000070, "DDC1 HB1 output clock divider"}
	fStreamProcDdc1Hb1ClkEnable = Field{"stream_proc_ddc1_hb1_clk_en", BlockDig, 0x040, 0x00000100, "Stream processor DDC1 HB1 clock enable"}

	fHb2OverloadEnable        = Field{"hb2_overload_enable", BlockDig, 0x050, 0x00000001, "HB2 overload detector enable"}
	fHb2OverloadSignalSelect  = Field{"hb2_overload_signal_sel", BlockDig, 0x050, 0x00000002, "HB2 overload signal select"}
	fHb2OverloadPowerMode     = Field{"hb2_overload_power_mode", BlockDig, 0x050, 0x00000004, "HB2 overload power mode (0=peak, 1=rms)"}
	fHb2OverloadDurationCount = Field{"hb2_overload_duration_cnt", BlockDig, 0x050, 0x000000F0, "HB2 overload duration count"}
	fHb2OverloadThreshCount   = Field{"hb2_overload_thresh_cnt", BlockDig, 0x050, 0x00000F00, "HB2 overload threshold count"}
	fHb2HighThreshold         = Field{"hb2_high_threshold", BlockDig, 0x054, 0x0000FFFF, "HB2 high threshold"}
	fHb2LowThreshold          = Field{"hb2_low_threshold", BlockDig, 0x054, 0xFFFF0000, "HB2 low threshold"}

	fManualGainIndex   = Field{"manual_gain_index", BlockDig, 0x060, 0x000000FF, "Manual gain index"}
	fGainIndexReadback = Field{"gain_index_readback", BlockDig, 0x060, 0x0000FF00, "Active gain index"}
	fAgcMinGainIndex   = Field{"agc_min_gain_index", BlockDig, 0x060, 0x00FF0000, "AGC minimum gain index"}
	fAgcMaxGainIndex   = Field{"agc_max_gain_index", BlockDig, 0x060, 0xFF000000, "AGC maximum gain index"}

	fRxLoSelect = Field{"rx_lo_sel", BlockDig, 0x070, 0x00000001, "Rx LO source"}

	fDigDecPowerEnable   = Field{"dig_dec_power_enable", BlockDig, 0x080, 0x00000001, "Dig decimated power enable"}
	fDigDecPowerDuration = Field{"dig_dec_power_duration", BlockDig, 0x080, 0x00001F00, "Dig decimated power duration"}
	fDigPeakToPowerMode  = Field{"dig_dec_power_peak_mode", BlockDig, 0x080, 0x00010000, "Dig peak-to-power mode"}
	fDigDecPowerValue    = Field{"dig_dec_power_value", BlockDig, 0x084, 0x000000FF, "Dig decimated power readback"}
)

// ORx Dig block fields.
var (
	fOrxIntDataFormat     = Field{"orx_int_data_format", BlockOrxDig, 0x010, 0x00000001, "ORx integer format"}
	fOrxIntDataResolution = Field{"orx_int_data_resolution", BlockOrxDig, 0x010, 0x00000002, "ORx integer resolution"}
	fOrxTrmAtten          = Field{"orx_trm_atten", BlockOrxDig, 0x020, 0x000000FF, "ORx TRM attenuator code"}
	fOrxTrmAttenPd        = Field{"orx_trm_atten_pd", BlockOrxDig, 0x020, 0x00000100, "ORx TRM attenuator power down"}
	fOrxLoSelect          = Field{"orx_lo_sel", BlockOrxDig, 0x030, 0x00000001, "ORx LO source"}
	fOrxDecPowerEnable    = Field{"orx_dec_power_enable", BlockOrxDig, 0x040, 0x00000001, "ORx decimated power enable"}
	fOrxDecPowerDuration  = Field{"orx_dec_power_duration", BlockOrxDig, 0x040, 0x00001F00, "ORx decimated power duration"}
	fOrxPeakToPowerMode   = Field{"orx_dec_power_peak_mode", BlockOrxDig, 0x040, 0x00010000, "ORx peak-to-power mode"}
	fOrxDecPowerValue     = Field{"orx_dec_power_value", BlockOrxDig, 0x044, 0x000000FF, "ORx decimated power readback"}
)

// Register dump tables.
var (
	rxDumpFields = []Field{
		fGainCompEnable, fFpEnable, fSlicerPinControlMode, fStatic3BitSlicerMode,
		fIntDataFormat, fIntDataResolution, fIntEmbedSlicer, fIntEmbedSlicerPos, fIntEmbedSlicerNumber,
		fIntParitySupport, fIntEvenParity, fIntSlicerLsbOnQ,
		fSlicerPinControlStep, fMaxSlicerOverride, fMaxSlicer,
		fFpRoundMode, fFpFormat, fFpNanEncEnable, fFpExponentBits, fFpHideLeadingOne, fFpIntDataAtten,
		fMonFormatI0, fMonFormatI1, fMonFormatQ0, fMonFormatQ1,
		fApdHighSrcSel, fApdLowSrcSel, fHb2HighSrcSel, fHb2LowSrcSel, fInvertHb2Flag, fInvertApdFlag,
		fRoutClkDivideRatio, fDdc1Hb1OutClkDivideRatio, fStreamProcDdc1Hb1ClkEnable,
		fManualGainIndex, fGainIndexReadback, fRxLoSelect,
	}
	orxDumpFields = []Field{
		fOrxIntDataFormat, fOrxIntDataResolution, fOrxTrmAtten, fOrxTrmAttenPd, fOrxLoSelect,
	}
)

// Formatter defaults written by the gain compensation disabled baseline.
const (
	defaultIntDataFormat     = 0 // 2s complement
	defaultIntDataResolution = 1 // 16 bit
)
