package adrv903x

// MaxOrxAttenDb is the largest ORx TRM attenuation.
const MaxOrxAttenDb = 16

// orxTrmAttenLut maps attenuation in dB to the TRM attenuator code.
var orxTrmAttenLut = [MaxOrxAttenDb + 1]uint8{
	0x00, 0x04, 0x08, 0x0C, 0x10, 0x14, 0x18, 0x1C,
	0x21, 0x26, 0x2B, 0x31, 0x37, 0x3E, 0x46, 0x4F, 0x5A,
}

// ORxAttenDbToRegValues converts an attenuation in dB to the TRM attenuator
// code and power down bit.
func ORxAttenDbToRegValues(attenDb uint8) (trmAtten uint8, trmAttenPd uint8, err error) {
	if attenDb > MaxOrxAttenDb {
		return 0, 0, invalidParam("ORxAttenDbToRegValues", "atten_db", "%d above %d", attenDb, MaxOrxAttenDb)
	}
	return orxTrmAttenLut[attenDb], 0, nil
}

// ORxTrmAttenToDb converts a TRM attenuator code back to dB. Only codes
// produced by ORxAttenDbToRegValues are accepted.
func ORxTrmAttenToDb(trmAtten uint8, trmAttenPd uint8) (uint8, error) {
	const op = "ORxTrmAttenToDb"
	if trmAttenPd != 0 {
		return 0, invalidParam(op, "trm_atten_pd", "attenuator powered down")
	}
	for db, code := range orxTrmAttenLut {
		if code == trmAtten {
			return uint8(db), nil
		}
	}
	return 0, invalidParam(op, "trm_atten", "code 0x%02X has no dB value", trmAtten)
}

// OrxAttenSet sets the TRM attenuation of every ORx channel in mask.
func (d *Device) OrxAttenSet(mask ChannelMask, attenDb uint8) error {
	const op = "OrxAttenSet"
	if err := d.checkMask(op, mask); err != nil {
		return err
	}
	if mask.Rx() != 0 {
		return invalidParam(op, "channel_mask", "Rx channels %s have no TRM attenuator", mask.Rx())
	}
	code, pd, err := ORxAttenDbToRegValues(attenDb)
	if err != nil {
		return err
	}
	for _, ch := range mask.Channels() {
		base, err := d.ResolveOrxDigAddr(ch)
		if err != nil {
			return err
		}
		err = d.writeFields(op, base, []fieldWrite{
			{fOrxTrmAtten, uint32(code)},
			{fOrxTrmAttenPd, uint32(pd)},
		})
		if err != nil {
			return err
		}
		d.log.Debug("orx attenuation set", "channel", ch, "atten_db", attenDb)
	}
	return nil
}

// OrxAttenGet returns the TRM attenuation of ch in dB.
func (d *Device) OrxAttenGet(ch Channel) (uint8, error) {
	const op = "OrxAttenGet"
	base, err := d.ResolveOrxDigAddr(ch)
	if err != nil {
		return 0, err
	}
	v, err := d.readFieldSet(op, base, fOrxTrmAtten, fOrxTrmAttenPd)
	if err != nil {
		return 0, err
	}
	return ORxTrmAttenToDb(uint8(v[0]), uint8(v[1]))
}
