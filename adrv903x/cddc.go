package adrv903x

// CddcDataFormatSet programs the CDDC integer formatter of every Rx channel in mask.
func (d *Device) CddcDataFormatSet(mask ChannelMask, ic IntegerConfig) error {
	const op = "CddcDataFormatSet"
	if err := d.checkRxOnlyMask(op, mask); err != nil {
		return err
	}
	if err := validateIntegerFields(op, ic); err != nil {
		return err
	}

	embed, err := ResolveCddcEmbedSlicer(ic.EmbeddedBits, ic.Parity)
	if err != nil {
		return err
	}
	resolution, format, err := ResolveSampleResFormat(ic.SampleResolution)
	if err != nil {
		return err
	}
	paritySupport, parityOdd, err := ResolveCddcParitySupport(ic.Parity)
	if err != nil {
		return err
	}
	writes := []fieldWrite{
		{fCddcIntDataFormat, format},
		{fCddcIntDataResolution, resolution},
		{fCddcIntEmbedSlicer, embed.Enable},
		{fCddcIntEmbedSlicerPos, embed.Position},
		{fCddcIntEmbedSlicerNumber, embed.BitCount},
		{fCddcIntParitySupport, paritySupport},
		{fCddcIntEvenParity, parityOdd},
		{fCddcIntSlicerLsbOnQ, uint32(ic.EmbeddedPosition)},
		{fCddcStatic3BitSlicerMode, embed.Static3Bit},
	}

	for _, ch := range mask.Channels() {
		base, err := d.ResolveFuncsAddr(ch)
		if err != nil {
			return err
		}
		if err := d.writeFields(op, base, writes); err != nil {
			return err
		}
		d.log.Debug("cddc format set", "channel", ch, "embedded_bits", ic.EmbeddedBits, "parity", ic.Parity)
	}
	return nil
}

// CddcDataFormatGet reads back the CDDC integer formatter of ch. Any 2-bit
// embedding decodes as the 3 slicer variant.
func (d *Device) CddcDataFormatGet(ch Channel) (IntegerConfig, error) {
	const op = "CddcDataFormatGet"
	var ic IntegerConfig
	base, err := d.ResolveFuncsAddr(ch)
	if err != nil {
		return ic, err
	}
	v, err := d.readFieldSet(op, base, fCddcIntDataFormat, fCddcIntDataResolution, fCddcIntEmbedSlicer,
		fCddcIntEmbedSlicerPos, fCddcIntEmbedSlicerNumber, fCddcIntParitySupport, fCddcIntEvenParity,
		fCddcIntSlicerLsbOnQ)
	if err != nil {
		return ic, err
	}
	if ic.SampleResolution, err = EncodeSampleResFormat(v[1], v[0]); err != nil {
		return ic, err
	}
	if ic.EmbeddedBits, err = EncodeCddcEmbedSlicer(v[2], v[3], v[4]); err != nil {
		return ic, err
	}
	ic.Parity = EncodeCddcParitySupport(v[5], v[6])
	ic.EmbeddedPosition = EmbeddedPosition(v[7])
	return ic, nil
}
