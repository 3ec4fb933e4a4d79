package adrv903x

import (
	"errors"
	"reflect"
	"testing"
)

var testFpConfig = FloatingPointConfig{
	DataFormat:     FpSignExponentSignificand,
	RoundMode:      FpRoundTowardsZero,
	ExponentBits:   FpExponent4Bits,
	AttenSteps:     FpAttenMinus6dB,
	EncodeNan:      FpNanEncodeEnabled,
	HideLeadingOne: FpLeadingOneHidden,
}

func readDdc(t *testing.T, d *Device, ch Channel, band int, f Field) uint32 {
	t.Helper()
	base, err := d.ResolveDdcAddr(ch, band)
	if err != nil {
		t.Fatal(err)
	}
	v, err := d.readField("test", base, f)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestSetInteger3PinThenGetMode(t *testing.T) {
	d, _ := newTestDevice(t)
	ic := IntegerConfig{EmbeddedBits: Embed2BitMsb3Slicer, Parity: ParityNone}
	sc := SlicerConfig{
		IntStepSize:   SlicerStep2dB,
		IntGpioSelect: [NumSlicerBits]GpioPin{GpioNumber(0), GpioNumber(1), GpioNumber(2), GpioInvalid},
	}
	if err := d.SetInteger(Rx0.Mask(), InternalSlicer3Pin, ic, sc); err != nil {
		t.Fatalf("SetInteger: %v", err)
	}
	mustMode(t, d, Rx0, InternalSlicer3Pin)

	for band := 0; band < NumDdcBands; band++ {
		if v := readDdc(t, d, Rx0, band, fMaxSlicer); v != 7 {
			t.Errorf("band %d max slicer = %d, want 7", band, v)
		}
		if v := readDdc(t, d, Rx0, band, fSlicerPinControlStep); v != uint32(SlicerStep2dB) {
			t.Errorf("band %d step = %d", band, v)
		}
		if v := readDdc(t, d, Rx0, band, fIntEmbedSlicer); v != 0 {
			t.Errorf("band %d embeds slicer bits in a gpio mode", band)
		}
	}

	_, got, err := d.RxDataFormatIntegerGet(Rx0)
	if err != nil {
		t.Fatal(err)
	}
	if got.IntGpioSelect != sc.IntGpioSelect || got.IntStepSize != sc.IntStepSize {
		t.Errorf("slicer readback = %+v, want %+v", got, sc)
	}
}

func TestSetIntegerRebindsGpios(t *testing.T) {
	d, _ := newTestDevice(t)
	four := SlicerConfig{IntGpioSelect: [NumSlicerBits]GpioPin{GpioNumber(4), GpioNumber(5), GpioNumber(6), GpioNumber(7)}}
	if err := d.SetInteger(Rx1.Mask(), InternalSlicer4Pin, IntegerConfig{}, four); err != nil {
		t.Fatal(err)
	}
	mustMode(t, d, Rx1, InternalSlicer4Pin)

	two := SlicerConfig{IntGpioSelect: [NumSlicerBits]GpioPin{GpioNumber(6), GpioNumber(4)}}
	if err := d.SetInteger(Rx1.Mask(), InternalSlicer2Pin, IntegerConfig{}, two); err != nil {
		t.Fatalf("rebinding over previously used pins: %v", err)
	}
	mustMode(t, d, Rx1, InternalSlicer2Pin)

	pins, err := d.boundSlicerPins(Rx1)
	if err != nil {
		t.Fatal(err)
	}
	if pins != two.IntGpioSelect {
		t.Errorf("bound pins = %v, want %v", pins, two.IntGpioSelect)
	}
}

func TestSetIntegerNoGpioStickyBit(t *testing.T) {
	d, _ := newTestDevice(t)
	ic := IntegerConfig{
		SampleResolution: Res16BitSignedMagnitude,
		EmbeddedBits:     Embed2BitMsb3Slicer,
		Parity:           Parity3BitOdd,
		EmbeddedPosition: LowerNibbleOnQ,
	}
	sc := SlicerConfig{IntStepSize: SlicerStep4dB}
	if err := d.SetInteger(MaskOf(Rx0, Rx1), InternalSlicerNoGpio, ic, sc); err != nil {
		t.Fatal(err)
	}
	if d.State().Rx3BitSlicerMode != MaskOf(Rx0, Rx1) {
		t.Fatalf("sticky mask = %s", d.State().Rx3BitSlicerMode)
	}
	mustMode(t, d, Rx1, InternalSlicerNoGpio)

	got, gotSlicer, err := d.RxDataFormatIntegerGet(Rx1)
	if err != nil {
		t.Fatal(err)
	}
	if got != ic {
		t.Errorf("integer readback = %+v, want %+v", got, ic)
	}
	if gotSlicer.IntStepSize != SlicerStep4dB {
		t.Errorf("step readback = %s", gotSlicer.IntStepSize)
	}
	if v := readDdc(t, d, Rx1, 1, fStatic3BitSlicerMode); v != 0 {
		t.Error("static 3-bit mode must stay off when parity is used")
	}

	// Switching Rx1 to a 4 slicer embedding clears only its sticky bit.
	ic.EmbeddedBits, ic.Parity = Embed2BitMsb4Slicer, ParityNone
	if err := d.SetInteger(Rx1.Mask(), InternalSlicerNoGpio, ic, sc); err != nil {
		t.Fatal(err)
	}
	if d.State().Rx3BitSlicerMode != Rx0.Mask() {
		t.Errorf("sticky mask = %s, want rx0", d.State().Rx3BitSlicerMode)
	}
	got, _, _ = d.RxDataFormatIntegerGet(Rx1)
	if got.EmbeddedBits != Embed2BitMsb4Slicer {
		t.Errorf("embedded bits = %s", got.EmbeddedBits)
	}
}

// NOGPIO without embedded bits has no register signature of its own and
// reads back as gain compensation disabled.
func TestNoGpioWithoutEmbeddedBitsReadsDisabled(t *testing.T) {
	d, _ := newTestDevice(t)
	if err := d.SetInteger(Rx3.Mask(), InternalSlicerNoGpio, IntegerConfig{}, SlicerConfig{}); err != nil {
		t.Fatal(err)
	}
	mustMode(t, d, Rx3, GainCompDisabled)
	if v := readDdc(t, d, Rx3, 0, fGainCompEnable); v != 1 {
		t.Error("gain compensation should still be enabled in hardware")
	}
}

func TestFloatingPointThenDisable(t *testing.T) {
	d, _ := newTestDevice(t)
	mask := MaskOf(Rx0, Rx1)
	if err := d.SetFloatingPoint(mask, testFpConfig); err != nil {
		t.Fatal(err)
	}
	mustMode(t, d, Rx0, FloatingPoint)
	fp, err := d.RxDataFormatFloatingPointGet(Rx1)
	if err != nil {
		t.Fatal(err)
	}
	if fp != testFpConfig {
		t.Errorf("fp readback = %+v, want %+v", fp, testFpConfig)
	}

	if err := d.SetGainCompDisabled(mask); err != nil {
		t.Fatal(err)
	}
	mustMode(t, d, Rx0, GainCompDisabled)
	mc, err := d.RxDataFormatEmbOvldMonitorGet(Rx0)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range mc.selectors() {
		if s != EmbMonNone {
			t.Errorf("selector %d = %s, want none", i, s)
		}
	}
	for band := 0; band < NumDdcBands; band++ {
		if readDdc(t, d, Rx1, band, fFpEnable) != 0 || readDdc(t, d, Rx1, band, fGainCompEnable) != 0 {
			t.Errorf("rx1 band %d still enabled", band)
		}
	}
}

func TestFloatingPointRejectsOrx(t *testing.T) {
	d, _ := newTestDevice(t)
	err := d.SetFloatingPoint(MaskOf(Rx0, ORx0), testFpConfig)
	if !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("got %v, want ErrInvalidParam", err)
	}
}

func TestSetGainCompDisabledIdempotent(t *testing.T) {
	d, regs := newTestDevice(t)
	ic := IntegerConfig{EmbeddedBits: Embed1BitLsb}
	sc := SlicerConfig{IntGpioSelect: [NumSlicerBits]GpioPin{GpioNumber(9), GpioNumber(10)}}
	if err := d.SetInteger(Rx2.Mask(), InternalSlicer2Pin, ic, sc); err != nil {
		t.Fatal(err)
	}
	if err := d.SetFloatingPoint(Rx0.Mask(), testFpConfig); err != nil {
		t.Fatal(err)
	}

	mask := MaskOf(Rx0, Rx2, ORx1)
	if err := d.SetGainCompDisabled(mask); err != nil {
		t.Fatal(err)
	}
	once := regs.Snapshot()
	if err := d.SetGainCompDisabled(mask); err != nil {
		t.Fatal(err)
	}
	if twice := regs.Snapshot(); !reflect.DeepEqual(once, twice) {
		t.Error("second SetGainCompDisabled changed register state")
	}
	mustMode(t, d, Rx2, GainCompDisabled)

	orx, _ := d.ResolveOrxDigAddr(ORx1)
	if v, _ := d.readField("test", orx, fOrxIntDataResolution); v != defaultIntDataResolution {
		t.Errorf("orx resolution = %d", v)
	}
}

func testMonitor() EmbOverloadMonitorConfig {
	return EmbOverloadMonitorConfig{
		LsbI:       EmbMonApdHigh,
		LsbPlus1Q:  EmbMonHb2Low,
		ApdHighSrc: ApdCounterExceeded,
		Hb2LowSrc:  Hb2LowInt1CounterExceeded,
		InvertApd:  true,
	}
}

func TestEmbeddedOverloadMonitor(t *testing.T) {
	d, regs := newTestDevice(t)
	dig, _ := d.ResolveRxDigAddr(Rx5)
	if err := regs.WriteField(dig+fRoutClkDivideRatio.Offset, fRoutClkDivideRatio.Mask, 5); err != nil {
		t.Fatal(err)
	}

	ic := IntegerConfig{SampleResolution: Res16BitTwosComplement}
	mc := testMonitor()
	if err := d.SetEmbeddedOverloadMonitor(Rx5.Mask(), ic, mc); err != nil {
		t.Fatal(err)
	}
	mustMode(t, d, Rx5, EmbeddedOverloadMonitor)

	got, err := d.RxDataFormatEmbOvldMonitorGet(Rx5)
	if err != nil {
		t.Fatal(err)
	}
	if got != mc {
		t.Errorf("monitor readback = %+v, want %+v", got, mc)
	}
	if v := readDdc(t, d, Rx5, 1, fMonFormatQ1); v != uint32(EmbMonHb2Low) {
		t.Errorf("band1 Q1 selector = %d", v)
	}

	if v, _ := d.readField("test", dig, fDdc1Hb1OutClkDivideRatio); v != 5 {
		t.Errorf("ddc1 hb1 divider = %d, want 5", v)
	}
	if v, _ := d.readField("test", dig, fStreamProcDdc1Hb1ClkEnable); v != 1 {
		t.Error("stream processor clock not enabled")
	}
}

func TestEmbeddedOverloadMonitorNoSource(t *testing.T) {
	d, _ := newTestDevice(t)
	ic := IntegerConfig{SampleResolution: Res16BitTwosComplement}
	err := d.SetEmbeddedOverloadMonitor(Rx0.Mask(), ic, EmbOverloadMonitorConfig{})
	if !errors.Is(err, ErrConfigInconsistent) {
		t.Fatalf("got %v, want ErrConfigInconsistent", err)
	}
}

func TestEmbeddedOverloadMonitorNeeds16BitTwos(t *testing.T) {
	d, _ := newTestDevice(t)
	ic := IntegerConfig{SampleResolution: Res16BitSignedMagnitude}
	if err := d.SetEmbeddedOverloadMonitor(Rx0.Mask(), ic, testMonitor()); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("got %v, want ErrInvalidParam", err)
	}
}

func TestExternalSlicerNotImplemented(t *testing.T) {
	d, _ := newTestDevice(t)
	masks := []ChannelMask{0, Rx0.Mask(), MaskOf(Rx0, Rx1), ORx0.Mask(), 0xFFFF}
	for _, m := range masks {
		cfg := RxDataFormatConfig{ChannelMask: m, Format: ExternalSlicerFormat{}}
		if err := d.RxDataFormatSet([]RxDataFormatConfig{cfg}); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("mask %s: RxDataFormatSet got %v", m, err)
		}
		if err := d.SetInteger(m, ExternalSlicer, IntegerConfig{}, SlicerConfig{}); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("mask %s: SetInteger got %v", m, err)
		}
	}
}

func TestValidateIntegerConfig(t *testing.T) {
	d, _ := newTestDevice(t)
	pins2 := [NumSlicerBits]GpioPin{GpioNumber(0), GpioNumber(1)}

	tests := []struct {
		name string
		mask ChannelMask
		mode DataFormatMode
		ic   IntegerConfig
		sc   SlicerConfig
	}{
		{"parity without 3 slicer", Rx0.Mask(), InternalSlicerNoGpio,
			IntegerConfig{SampleResolution: Res16BitTwosComplement, EmbeddedBits: Embed2BitMsb4Slicer, Parity: Parity3BitEven}, SlicerConfig{}},
		{"parity at 12 bit", Rx0.Mask(), InternalSlicerNoGpio,
			IntegerConfig{SampleResolution: Res12BitSignedMagnitude, EmbeddedBits: Embed2BitMsb3Slicer, Parity: Parity3BitEven}, SlicerConfig{}},
		{"1 bit msb needs signed", Rx0.Mask(), InternalSlicerNoGpio,
			IntegerConfig{SampleResolution: Res16BitTwosComplement, EmbeddedBits: Embed1BitMsb}, SlicerConfig{}},
		{"gpio mode on two channels", MaskOf(Rx0, Rx1), InternalSlicer2Pin, IntegerConfig{}, SlicerConfig{IntGpioSelect: pins2}},
		{"missing gpio", Rx0.Mask(), InternalSlicer3Pin, IntegerConfig{}, SlicerConfig{IntGpioSelect: pins2}},
		{"extra gpio", Rx0.Mask(), InternalSlicer2Pin, IntegerConfig{},
			SlicerConfig{IntGpioSelect: [NumSlicerBits]GpioPin{GpioNumber(0), GpioNumber(1), GpioNumber(2)}}},
		{"duplicate gpio", Rx0.Mask(), InternalSlicer2Pin, IntegerConfig{},
			SlicerConfig{IntGpioSelect: [NumSlicerBits]GpioPin{GpioNumber(3), GpioNumber(3)}}},
		{"bad step", Rx0.Mask(), InternalSlicerNoGpio, IntegerConfig{}, SlicerConfig{IntStepSize: 9}},
		{"orx channel", ORx0.Mask(), InternalSlicerNoGpio, IntegerConfig{}, SlicerConfig{}},
		{"empty mask", 0, InternalSlicerNoGpio, IntegerConfig{}, SlicerConfig{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.SetInteger(tt.mask, tt.mode, tt.ic, tt.sc); !errors.Is(err, ErrInvalidParam) {
				t.Fatalf("got %v, want ErrInvalidParam", err)
			}
		})
	}
}

func TestOneBitMsbSigned(t *testing.T) {
	d, _ := newTestDevice(t)
	ic := IntegerConfig{SampleResolution: Res12BitSignedMagnitude, EmbeddedBits: Embed1BitMsb}
	if err := d.SetInteger(Rx6.Mask(), InternalSlicerNoGpio, ic, SlicerConfig{}); err != nil {
		t.Fatal(err)
	}
	got, _, err := d.RxDataFormatIntegerGet(Rx6)
	if err != nil {
		t.Fatal(err)
	}
	if got != ic {
		t.Errorf("readback = %+v, want %+v", got, ic)
	}
}

func TestSetIntegerStopsAtFirstFailure(t *testing.T) {
	regs := NewRegisterFile()
	failAddr := rxDdcBase[1][0] + fFpRoundMode.Offset
	port := &failingPort{RegisterPort: regs, failAddr: failAddr}
	d, err := New(port, NewState())
	if err != nil {
		t.Fatal(err)
	}

	err = d.SetFloatingPoint(MaskOf(Rx0, Rx1, Rx2), testFpConfig)
	if !errors.Is(err, ErrRegisterIO) || !errors.Is(err, errInjected) {
		t.Fatalf("got %v, want register io failure wrapping the transport error", err)
	}

	// Rx0 was fully programmed before Rx1 failed; Rx2 was never touched.
	mustMode(t, d, Rx0, FloatingPoint)
	mustMode(t, d, Rx1, GainCompDisabled)
	mustMode(t, d, Rx2, GainCompDisabled)
	if v := readDdc(t, d, Rx2, 0, fFpRoundMode); v != 0 {
		t.Errorf("rx2 round mode = %d", v)
	}
}

func TestRxDataFormatSetDispatch(t *testing.T) {
	d, _ := newTestDevice(t)
	cfgs := []RxDataFormatConfig{
		{ChannelMask: Rx0.Mask(), Format: FloatingPointFormat{Config: testFpConfig}},
		{ChannelMask: Rx1.Mask(), Format: InternalSlicerFormat{
			SlicerMode: InternalSlicer4Pin,
			Slicer: SlicerConfig{IntGpioSelect: [NumSlicerBits]GpioPin{
				GpioNumber(12), GpioNumber(13), GpioNumber(14), GpioNumber(15)}},
		}},
		{ChannelMask: Rx2.Mask(), Format: EmbOverloadFormat{
			Integer: IntegerConfig{SampleResolution: Res16BitTwosComplement},
			Monitor: testMonitor(),
		}},
		{ChannelMask: MaskOf(Rx3, ORx0), Format: GainCompDisabledFormat{}},
	}
	if err := d.RxDataFormatSet(cfgs); err != nil {
		t.Fatal(err)
	}
	want := map[Channel]DataFormatMode{
		Rx0:  FloatingPoint,
		Rx1:  InternalSlicer4Pin,
		Rx2:  EmbeddedOverloadMonitor,
		Rx3:  GainCompDisabled,
		ORx0: GainCompDisabled,
	}
	for ch, mode := range want {
		mustMode(t, d, ch, mode)
	}

	got, err := d.RxDataFormatGet(Rx0)
	if err != nil {
		t.Fatal(err)
	}
	if fp, ok := got.Format.(FloatingPointFormat); !ok || fp.Config != testFpConfig {
		t.Errorf("RxDataFormatGet(rx0) = %#v", got.Format)
	}

	if err := d.RxDataFormatSet(nil); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("empty config list: got %v", err)
	}
	bad := []RxDataFormatConfig{{ChannelMask: Rx0.Mask(), Format: nil}}
	if err := d.RxDataFormatSet(bad); !errors.Is(err, ErrNullPointer) {
		t.Errorf("nil format: got %v", err)
	}
}

func TestRxDataFormatSetValidatesBeforeWriting(t *testing.T) {
	d, regs := newTestDevice(t)
	cfgs := []RxDataFormatConfig{
		{ChannelMask: Rx0.Mask(), Format: FloatingPointFormat{Config: testFpConfig}},
		{ChannelMask: ORx0.Mask(), Format: FloatingPointFormat{Config: testFpConfig}},
	}
	if err := d.RxDataFormatSet(cfgs); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("got %v", err)
	}
	if len(regs.Addresses()) != 0 {
		t.Error("registers written despite validation failure")
	}
}
