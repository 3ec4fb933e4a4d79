package adrv903x

// Embedded slicer field encodings.
const (
	embedPosMsb    uint32 = 0
	embedPosLsb    uint32 = 1
	embedCount1Bit uint32 = 0
	embedCount2Bit uint32 = 1
)

// EmbedSlicerFields are the primitive embedded slicer register values.
type EmbedSlicerFields struct {
	Enable     uint32
	Position   uint32
	BitCount   uint32
	Static3Bit uint32
}

// embedDisabled is written whenever slicer bits are not embedded.
var embedDisabled = EmbedSlicerFields{Enable: 0, Position: embedPosMsb, BitCount: embedCount2Bit}

var embedSlicerTable = map[EmbeddedBits]EmbedSlicerFields{
	EmbedNone:           embedDisabled,
	Embed1BitMsb:        {Enable: 1, Position: embedPosMsb, BitCount: embedCount1Bit},
	Embed1BitLsb:        {Enable: 1, Position: embedPosLsb, BitCount: embedCount1Bit},
	Embed2BitMsb3Slicer: {Enable: 1, Position: embedPosMsb, BitCount: embedCount2Bit},
	Embed2BitLsb3Slicer: {Enable: 1, Position: embedPosLsb, BitCount: embedCount2Bit},
	Embed2BitMsb4Slicer: {Enable: 1, Position: embedPosMsb, BitCount: embedCount2Bit},
	Embed2BitLsb4Slicer: {Enable: 1, Position: embedPosLsb, BitCount: embedCount2Bit},
}

func lookupEmbedSlicer(op string, bits EmbeddedBits, parity Parity) (EmbedSlicerFields, error) {
	f, ok := embedSlicerTable[bits]
	if !ok {
		return EmbedSlicerFields{}, invalidParam(op, "embedded_bits", "unsupported value %d", uint8(bits))
	}
	// Parity and static 3-bit mode share hardware; only one can be active.
	if bits.is3Slicer() && parity == ParityNone {
		f.Static3Bit = 1
	}
	return f, nil
}

// ResolveEmbedSlicer maps an embedded bits selection to register values.
// Only InternalSlicerNoGpio embeds bits; every other mode gets the disabled baseline.
func ResolveEmbedSlicer(mode DataFormatMode, bits EmbeddedBits, parity Parity) (EmbedSlicerFields, error) {
	if mode != InternalSlicerNoGpio {
		return embedDisabled, nil
	}
	return lookupEmbedSlicer("ResolveEmbedSlicer", bits, parity)
}

// decodeEmbedSlicer maps raw embed fields back to an EmbeddedBits value. The
// 2-bit encodings are shared by the 3 and 4 slicer variants; is3Slicer picks one.
func decodeEmbedSlicer(op string, enable, pos, count uint32, is3Slicer bool) (EmbeddedBits, error) {
	if enable == 0 {
		return EmbedNone, nil
	}
	switch {
	case count == embedCount1Bit && pos == embedPosMsb:
		return Embed1BitMsb, nil
	case count == embedCount1Bit && pos == embedPosLsb:
		return Embed1BitLsb, nil
	case count == embedCount2Bit && pos == embedPosMsb:
		if is3Slicer {
			return Embed2BitMsb3Slicer, nil
		}
		return Embed2BitMsb4Slicer, nil
	case count == embedCount2Bit && pos == embedPosLsb:
		if is3Slicer {
			return Embed2BitLsb3Slicer, nil
		}
		return Embed2BitLsb4Slicer, nil
	}
	return EmbedNone, &Error{
		Kind: ErrConfigInconsistent,
		Op:   op,
		Msg:  "unrecognized embedded slicer encoding",
	}
}

// EncodeEmbedSlicer reconstructs the embedded bits selection of ch from raw
// fields, consulting the channel's 3-bit slicer mode bit.
func (d *Device) EncodeEmbedSlicer(ch Channel, enable, pos, count uint32) (EmbeddedBits, error) {
	return decodeEmbedSlicer("EncodeEmbedSlicer", enable, pos, count, d.state.Rx3BitSlicerMode.Has(ch))
}

// ResolveParitySupport returns the parity support enable and odd select bits.
func ResolveParitySupport(p Parity) (support, odd uint32, err error) {
	switch p {
	case ParityNone:
		return 0, 0, nil
	case Parity3BitEven:
		return 1, 0, nil
	case Parity3BitOdd:
		return 1, 1, nil
	}
	return 0, 0, invalidParam("ResolveParitySupport", "parity", "unsupported value %d", uint8(p))
}

func decodeParity(support, odd uint32) Parity {
	switch {
	case support == 0:
		return ParityNone
	case odd == 0:
		return Parity3BitEven
	}
	return Parity3BitOdd
}

// EncodeParitySupport reconstructs the parity selection of ch. Parity only
// exists in 3-bit slicer mode, so it reads as none when that bit is clear.
func (d *Device) EncodeParitySupport(ch Channel, support, odd uint32) Parity {
	if !d.state.Rx3BitSlicerMode.Has(ch) {
		return ParityNone
	}
	return decodeParity(support, odd)
}

// ResolveSampleResFormat returns the resolution and format register bits.
func ResolveSampleResFormat(r SampleResolution) (resolution, format uint32, err error) {
	switch r {
	case Res12BitTwosComplement:
		return 0, 0, nil
	case Res12BitSignedMagnitude:
		return 0, 1, nil
	case Res16BitTwosComplement:
		return 1, 0, nil
	case Res16BitSignedMagnitude:
		return 1, 1, nil
	}
	return 0, 0, invalidParam("ResolveSampleResFormat", "sample_resolution", "unsupported value %d", uint8(r))
}

// EncodeSampleResFormat is the inverse of ResolveSampleResFormat.
func EncodeSampleResFormat(resolution, format uint32) (SampleResolution, error) {
	switch {
	case resolution == 0 && format == 0:
		return Res12BitTwosComplement, nil
	case resolution == 0 && format == 1:
		return Res12BitSignedMagnitude, nil
	case resolution == 1 && format == 0:
		return Res16BitTwosComplement, nil
	case resolution == 1 && format == 1:
		return Res16BitSignedMagnitude, nil
	}
	return 0, invalidParam("EncodeSampleResFormat", "sample_resolution",
		"unmapped resolution %d format %d", resolution, format)
}

// ResolveCddcEmbedSlicer is the CDDC formatter version of ResolveEmbedSlicer.
// The CDDC formatter has no mode, so bits are always resolved.
func ResolveCddcEmbedSlicer(bits EmbeddedBits, parity Parity) (EmbedSlicerFields, error) {
	return lookupEmbedSlicer("ResolveCddcEmbedSlicer", bits, parity)
}

// EncodeCddcEmbedSlicer decodes CDDC embed fields. It keeps no 3-bit slicer
// state and reports the 3 slicer variant for every 2-bit encoding.
func EncodeCddcEmbedSlicer(enable, pos, count uint32) (EmbeddedBits, error) {
	return decodeEmbedSlicer("EncodeCddcEmbedSlicer", enable, pos, count, true)
}

// ResolveCddcParitySupport is the CDDC formatter version of ResolveParitySupport.
func ResolveCddcParitySupport(p Parity) (support, odd uint32, err error) {
	return ResolveParitySupport(p)
}

// EncodeCddcParitySupport decodes CDDC parity fields without any mode gating.
func EncodeCddcParitySupport(support, odd uint32) Parity {
	return decodeParity(support, odd)
}

// maxSlicerFor returns the max slicer override for a GPIO slicer mode. write
// is false when the mode uses no pins and the value field must be left alone.
func maxSlicerFor(mode DataFormatMode) (override, value uint32, write bool) {
	switch mode.slicerPins() {
	case 2:
		return 1, 3, true
	case 3:
		return 1, 7, true
	case 4:
		return 1, 15, true
	}
	return 0, 0, false
}
