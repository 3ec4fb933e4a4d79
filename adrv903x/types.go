package adrv903x

import "fmt"

// DataFormatMode selects how an Rx channel formats its output samples.
type DataFormatMode uint8

const (
	GainCompDisabled DataFormatMode = iota
	FloatingPoint
	InternalSlicerNoGpio
	InternalSlicer2Pin
	InternalSlicer3Pin
	InternalSlicer4Pin
	ExternalSlicer
	EmbeddedOverloadMonitor
)

var dataFormatModeNames = map[DataFormatMode]string{
	GainCompDisabled:        "gain_comp_disabled",
	FloatingPoint:           "floating_point",
	InternalSlicerNoGpio:    "int_slicer_nogpio",
	InternalSlicer2Pin:      "int_slicer_2pin",
	InternalSlicer3Pin:      "int_slicer_3pin",
	InternalSlicer4Pin:      "int_slicer_4pin",
	ExternalSlicer:          "ext_slicer",
	EmbeddedOverloadMonitor: "emb_overload_monitor",
}

func (m DataFormatMode) String() string { return enumString(m, dataFormatModeNames) }

func (m DataFormatMode) MarshalText() ([]byte, error) {
	return enumText(m, dataFormatModeNames, "data format mode")
}

func (m *DataFormatMode) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, dataFormatModeNames, "data format mode")
	*m = v
	return err
}

// slicerPins returns the number of GPIO slicer pins used by m, or 0.
func (m DataFormatMode) slicerPins() int {
	switch m {
	case InternalSlicer2Pin:
		return 2
	case InternalSlicer3Pin:
		return 3
	case InternalSlicer4Pin:
		return 4
	}
	return 0
}

func (m DataFormatMode) isIntegerMode() bool {
	return m == InternalSlicerNoGpio || m.slicerPins() > 0
}

// SampleResolution is the integer sample width and number format.
type SampleResolution uint8

const (
	Res12BitTwosComplement SampleResolution = iota
	Res12BitSignedMagnitude
	Res16BitTwosComplement
	Res16BitSignedMagnitude
)

var sampleResolutionNames = map[SampleResolution]string{
	Res12BitTwosComplement:  "12bit_twos",
	Res12BitSignedMagnitude: "12bit_signed",
	Res16BitTwosComplement:  "16bit_twos",
	Res16BitSignedMagnitude: "16bit_signed",
}

func (r SampleResolution) String() string { return enumString(r, sampleResolutionNames) }

func (r SampleResolution) MarshalText() ([]byte, error) {
	return enumText(r, sampleResolutionNames, "sample resolution")
}

func (r *SampleResolution) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, sampleResolutionNames, "sample resolution")
	*r = v
	return err
}

func (r SampleResolution) is16Bit() bool {
	return r == Res16BitTwosComplement || r == Res16BitSignedMagnitude
}

func (r SampleResolution) isSigned() bool {
	return r == Res12BitSignedMagnitude || r == Res16BitSignedMagnitude
}

// EmbeddedBits selects which slicer bits are carried inside the sample word.
type EmbeddedBits uint8

const (
	EmbedNone EmbeddedBits = iota
	Embed1BitMsb
	Embed1BitLsb
	Embed2BitMsb3Slicer
	Embed2BitMsb4Slicer
	Embed2BitLsb3Slicer
	Embed2BitLsb4Slicer
)

var embeddedBitsNames = map[EmbeddedBits]string{
	EmbedNone:           "none",
	Embed1BitMsb:        "1bit_msb",
	Embed1BitLsb:        "1bit_lsb",
	Embed2BitMsb3Slicer: "2bit_msb_3slicer",
	Embed2BitMsb4Slicer: "2bit_msb_4slicer",
	Embed2BitLsb3Slicer: "2bit_lsb_3slicer",
	Embed2BitLsb4Slicer: "2bit_lsb_4slicer",
}

func (e EmbeddedBits) String() string { return enumString(e, embeddedBitsNames) }

func (e EmbeddedBits) MarshalText() ([]byte, error) {
	return enumText(e, embeddedBitsNames, "embedded bits")
}

func (e *EmbeddedBits) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, embeddedBitsNames, "embedded bits")
	*e = v
	return err
}

func (e EmbeddedBits) is3Slicer() bool {
	return e == Embed2BitMsb3Slicer || e == Embed2BitLsb3Slicer
}

// Parity selects the parity bit carried with a 3-bit slicer.
type Parity uint8

const (
	ParityNone Parity = iota
	Parity3BitEven
	Parity3BitOdd
)

var parityNames = map[Parity]string{
	ParityNone:     "none",
	Parity3BitEven: "3bit_even",
	Parity3BitOdd:  "3bit_odd",
}

func (p Parity) String() string { return enumString(p, parityNames) }

func (p Parity) MarshalText() ([]byte, error) { return enumText(p, parityNames, "parity") }

func (p *Parity) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, parityNames, "parity")
	*p = v
	return err
}

// EmbeddedPosition selects which of I or Q carries the lower slicer nibble.
type EmbeddedPosition uint8

const (
	LowerNibbleOnI EmbeddedPosition = iota
	LowerNibbleOnQ
)

var embeddedPositionNames = map[EmbeddedPosition]string{
	LowerNibbleOnI: "lower_nibble_on_i",
	LowerNibbleOnQ: "lower_nibble_on_q",
}

func (p EmbeddedPosition) String() string { return enumString(p, embeddedPositionNames) }

func (p EmbeddedPosition) MarshalText() ([]byte, error) {
	return enumText(p, embeddedPositionNames, "embedded position")
}

func (p *EmbeddedPosition) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, embeddedPositionNames, "embedded position")
	*p = v
	return err
}

// SlicerStepSize is the gain step represented by one slicer increment.
type SlicerStepSize uint8

const (
	SlicerStep1dB SlicerStepSize = iota
	SlicerStep2dB
	SlicerStep3dB
	SlicerStep4dB
	SlicerStep6dB
	SlicerStep8dB
)

var slicerStepNames = map[SlicerStepSize]string{
	SlicerStep1dB: "1db",
	SlicerStep2dB: "2db",
	SlicerStep3dB: "3db",
	SlicerStep4dB: "4db",
	SlicerStep6dB: "6db",
	SlicerStep8dB: "8db",
}

func (s SlicerStepSize) String() string { return enumString(s, slicerStepNames) }

func (s SlicerStepSize) MarshalText() ([]byte, error) {
	return enumText(s, slicerStepNames, "slicer step size")
}

func (s *SlicerStepSize) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, slicerStepNames, "slicer step size")
	*s = v
	return err
}

// NumSlicerBits is the number of slicer position signals per channel.
const NumSlicerBits = 4

// NumGpioPins is the number of digital GPIOs on the device.
const NumGpioPins = 24

// GpioPin is a digital GPIO. The zero value is GpioInvalid; Gpio00 is pin 0.
type GpioPin uint8

const (
	GpioInvalid GpioPin = iota
	Gpio00
)

var gpioPinNames = func() map[GpioPin]string {
	names := map[GpioPin]string{GpioInvalid: "invalid"}
	for n := 0; n < NumGpioPins; n++ {
		names[Gpio00+GpioPin(n)] = fmt.Sprintf("gpio%d", n)
	}
	return names
}()

// GpioNumber returns the pin for GPIO number n.
func GpioNumber(n int) GpioPin {
	if n < 0 || n >= NumGpioPins {
		return GpioInvalid
	}
	return Gpio00 + GpioPin(n)
}

// Number returns the pin number, or -1 for GpioInvalid.
func (p GpioPin) Number() int {
	if !p.Valid() {
		return -1
	}
	return int(p - Gpio00)
}

// Valid reports whether p names a physical pin.
func (p GpioPin) Valid() bool {
	return p >= Gpio00 && p < Gpio00+NumGpioPins
}

func (p GpioPin) String() string { return enumString(p, gpioPinNames) }

func (p GpioPin) MarshalText() ([]byte, error) { return enumText(p, gpioPinNames, "gpio") }

func (p *GpioPin) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = GpioInvalid
		return nil
	}
	v, err := parseEnum(text, gpioPinNames, "gpio")
	*p = v
	return err
}

// IntegerConfig describes integer sample formatting.
type IntegerConfig struct {
	SampleResolution SampleResolution `json:"sample_resolution" yaml:"sample_resolution"`
	EmbeddedBits     EmbeddedBits     `json:"embedded_bits" yaml:"embedded_bits"`
	Parity           Parity           `json:"parity" yaml:"parity"`
	EmbeddedPosition EmbeddedPosition `json:"embedded_position" yaml:"embedded_position"`
}

// SlicerConfig describes the slicer step size and the GPIOs that carry slicer bits.
type SlicerConfig struct {
	IntStepSize   SlicerStepSize         `json:"int_step_size" yaml:"int_step_size"`
	ExtStepSize   SlicerStepSize         `json:"ext_step_size" yaml:"ext_step_size"`
	IntGpioSelect [NumSlicerBits]GpioPin `json:"int_gpio_select" yaml:"int_gpio_select"`
	ExtGpioSelect GpioPin                `json:"ext_gpio_select" yaml:"ext_gpio_select"`
}

// FpDataFormat is the bit order of a floating point sample.
type FpDataFormat uint8

const (
	FpSignSignificandExponent FpDataFormat = iota
	FpSignExponentSignificand
)

var fpDataFormatNames = map[FpDataFormat]string{
	FpSignSignificandExponent: "sign_significand_exponent",
	FpSignExponentSignificand: "sign_exponent_significand",
}

func (f FpDataFormat) String() string { return enumString(f, fpDataFormatNames) }

func (f FpDataFormat) MarshalText() ([]byte, error) {
	return enumText(f, fpDataFormatNames, "fp data format")
}

func (f *FpDataFormat) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, fpDataFormatNames, "fp data format")
	*f = v
	return err
}

// FpRoundMode is the floating point rounding mode.
type FpRoundMode uint8

const (
	FpRoundNearestEven FpRoundMode = iota
	FpRoundTowardsPositive
	FpRoundTowardsNegative
	FpRoundTowardsZero
	FpRoundNearestAway
)

var fpRoundModeNames = map[FpRoundMode]string{
	FpRoundNearestEven:     "rne",
	FpRoundTowardsPositive: "rtp",
	FpRoundTowardsNegative: "rtn",
	FpRoundTowardsZero:     "rtz",
	FpRoundNearestAway:     "rna",
}

func (r FpRoundMode) String() string { return enumString(r, fpRoundModeNames) }

func (r FpRoundMode) MarshalText() ([]byte, error) {
	return enumText(r, fpRoundModeNames, "fp round mode")
}

func (r *FpRoundMode) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, fpRoundModeNames, "fp round mode")
	*r = v
	return err
}

// FpExponentBits is the exponent width of a floating point sample.
type FpExponentBits uint8

const (
	FpExponent2Bits FpExponentBits = iota
	FpExponent3Bits
	FpExponent4Bits
	FpExponent5Bits
)

var fpExponentBitsNames = map[FpExponentBits]string{
	FpExponent2Bits: "2bit",
	FpExponent3Bits: "3bit",
	FpExponent4Bits: "4bit",
	FpExponent5Bits: "5bit",
}

func (e FpExponentBits) String() string { return enumString(e, fpExponentBitsNames) }

func (e FpExponentBits) MarshalText() ([]byte, error) {
	return enumText(e, fpExponentBitsNames, "fp exponent bits")
}

func (e *FpExponentBits) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, fpExponentBitsNames, "fp exponent bits")
	*e = v
	return err
}

// FpAttenSteps is the attenuation applied before floating point conversion.
type FpAttenSteps uint8

const (
	FpAtten24dB FpAttenSteps = iota
	FpAtten18dB
	FpAtten12dB
	FpAtten6dB
	FpAtten0dB
	FpAttenMinus6dB
	FpAttenMinus12dB
	FpAttenMinus18dB
)

var fpAttenStepsNames = map[FpAttenSteps]string{
	FpAtten24dB:      "24db",
	FpAtten18dB:      "18db",
	FpAtten12dB:      "12db",
	FpAtten6dB:       "6db",
	FpAtten0dB:       "0db",
	FpAttenMinus6dB:  "-6db",
	FpAttenMinus12dB: "-12db",
	FpAttenMinus18dB: "-18db",
}

func (a FpAttenSteps) String() string { return enumString(a, fpAttenStepsNames) }

func (a FpAttenSteps) MarshalText() ([]byte, error) {
	return enumText(a, fpAttenStepsNames, "fp atten steps")
}

func (a *FpAttenSteps) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, fpAttenStepsNames, "fp atten steps")
	*a = v
	return err
}

// FpNanEncode enables NaN encoding of floating point samples.
type FpNanEncode uint8

const (
	FpNanEncodeDisabled FpNanEncode = iota
	FpNanEncodeEnabled
)

var fpNanEncodeNames = map[FpNanEncode]string{
	FpNanEncodeDisabled: "disabled",
	FpNanEncodeEnabled:  "enabled",
}

func (n FpNanEncode) String() string { return enumString(n, fpNanEncodeNames) }

func (n FpNanEncode) MarshalText() ([]byte, error) {
	return enumText(n, fpNanEncodeNames, "fp nan encode")
}

func (n *FpNanEncode) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, fpNanEncodeNames, "fp nan encode")
	*n = v
	return err
}

// FpLeadingOne selects whether the significand's leading one is transmitted.
type FpLeadingOne uint8

const (
	FpLeadingOneShown FpLeadingOne = iota
	FpLeadingOneHidden
)

var fpLeadingOneNames = map[FpLeadingOne]string{
	FpLeadingOneShown:  "shown",
	FpLeadingOneHidden: "hidden",
}

func (h FpLeadingOne) String() string { return enumString(h, fpLeadingOneNames) }

func (h FpLeadingOne) MarshalText() ([]byte, error) {
	return enumText(h, fpLeadingOneNames, "fp leading one")
}

func (h *FpLeadingOne) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, fpLeadingOneNames, "fp leading one")
	*h = v
	return err
}

// FloatingPointConfig describes floating point sample formatting.
type FloatingPointConfig struct {
	DataFormat     FpDataFormat   `json:"data_format" yaml:"data_format"`
	RoundMode      FpRoundMode    `json:"round_mode" yaml:"round_mode"`
	ExponentBits   FpExponentBits `json:"exponent_bits" yaml:"exponent_bits"`
	AttenSteps     FpAttenSteps   `json:"atten_steps" yaml:"atten_steps"`
	EncodeNan      FpNanEncode    `json:"encode_nan" yaml:"encode_nan"`
	HideLeadingOne FpLeadingOne   `json:"hide_leading_one" yaml:"hide_leading_one"`
}

// EmbMonitorSource selects the flag reported in one embedded monitor bit.
type EmbMonitorSource uint8

const (
	EmbMonNone EmbMonitorSource = iota
	EmbMonApdHigh
	EmbMonApdLow
	EmbMonHb2High
	EmbMonHb2Low
)

var embMonitorSourceNames = map[EmbMonitorSource]string{
	EmbMonNone:    "none",
	EmbMonApdHigh: "apd_high",
	EmbMonApdLow:  "apd_low",
	EmbMonHb2High: "hb2_high",
	EmbMonHb2Low:  "hb2_low",
}

func (s EmbMonitorSource) String() string { return enumString(s, embMonitorSourceNames) }

func (s EmbMonitorSource) MarshalText() ([]byte, error) {
	return enumText(s, embMonitorSourceNames, "monitor source")
}

func (s *EmbMonitorSource) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, embMonitorSourceNames, "monitor source")
	*s = v
	return err
}

// ApdSource selects the APD detector output used for a high or low flag.
type ApdSource uint8

const (
	ApdLevelExceeded ApdSource = iota
	ApdCounterExceeded
)

var apdSourceNames = map[ApdSource]string{
	ApdLevelExceeded:   "level_exceeded",
	ApdCounterExceeded: "counter_exceeded",
}

func (s ApdSource) String() string { return enumString(s, apdSourceNames) }

func (s ApdSource) MarshalText() ([]byte, error) { return enumText(s, apdSourceNames, "apd source") }

func (s *ApdSource) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, apdSourceNames, "apd source")
	*s = v
	return err
}

// Hb2HighSource selects the HB2 detector output used for the high flag.
type Hb2HighSource uint8

const (
	Hb2HighLevelExceeded Hb2HighSource = iota
	Hb2HighCounterExceeded
)

var hb2HighSourceNames = map[Hb2HighSource]string{
	Hb2HighLevelExceeded:   "level_exceeded",
	Hb2HighCounterExceeded: "counter_exceeded",
}

func (s Hb2HighSource) String() string { return enumString(s, hb2HighSourceNames) }

func (s Hb2HighSource) MarshalText() ([]byte, error) {
	return enumText(s, hb2HighSourceNames, "hb2 high source")
}

func (s *Hb2HighSource) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, hb2HighSourceNames, "hb2 high source")
	*s = v
	return err
}

// Hb2LowSource selects the HB2 detector output used for the low flag.
type Hb2LowSource uint8

const (
	Hb2LowLevelExceeded Hb2LowSource = iota
	Hb2LowCounterExceeded
	Hb2LowInt0CounterExceeded
	Hb2LowInt1CounterExceeded
)

var hb2LowSourceNames = map[Hb2LowSource]string{
	Hb2LowLevelExceeded:       "level_exceeded",
	Hb2LowCounterExceeded:     "counter_exceeded",
	Hb2LowInt0CounterExceeded: "int0_counter_exceeded",
	Hb2LowInt1CounterExceeded: "int1_counter_exceeded",
}

func (s Hb2LowSource) String() string { return enumString(s, hb2LowSourceNames) }

func (s Hb2LowSource) MarshalText() ([]byte, error) {
	return enumText(s, hb2LowSourceNames, "hb2 low source")
}

func (s *Hb2LowSource) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, hb2LowSourceNames, "hb2 low source")
	*s = v
	return err
}

// EmbOverloadMonitorConfig maps overload detector flags onto the two
// least significant bits of I and Q.
type EmbOverloadMonitorConfig struct {
	LsbI       EmbMonitorSource `json:"lsb_i" yaml:"lsb_i"`
	LsbPlus1I  EmbMonitorSource `json:"lsb_plus1_i" yaml:"lsb_plus1_i"`
	LsbQ       EmbMonitorSource `json:"lsb_q" yaml:"lsb_q"`
	LsbPlus1Q  EmbMonitorSource `json:"lsb_plus1_q" yaml:"lsb_plus1_q"`
	ApdHighSrc ApdSource        `json:"apd_high_src" yaml:"apd_high_src"`
	ApdLowSrc  ApdSource        `json:"apd_low_src" yaml:"apd_low_src"`
	Hb2HighSrc Hb2HighSource    `json:"hb2_high_src" yaml:"hb2_high_src"`
	Hb2LowSrc  Hb2LowSource     `json:"hb2_low_src" yaml:"hb2_low_src"`
	InvertHb2  bool             `json:"invert_hb2_flag" yaml:"invert_hb2_flag"`
	InvertApd  bool             `json:"invert_apd_flag" yaml:"invert_apd_flag"`
}

func (c EmbOverloadMonitorConfig) selectors() [4]EmbMonitorSource {
	return [4]EmbMonitorSource{c.LsbI, c.LsbPlus1I, c.LsbQ, c.LsbPlus1Q}
}

func (c EmbOverloadMonitorConfig) uses(src EmbMonitorSource) bool {
	for _, s := range c.selectors() {
		if s == src {
			return true
		}
	}
	return false
}
