package adrv903x

const gainWordMask = 0xFFFFFFFF

// RxGain requests a manual gain index on every channel in ChannelMask.
type RxGain struct {
	ChannelMask ChannelMask `json:"channel_mask" yaml:"channel_mask"`
	GainIndex   uint8       `json:"gain_index" yaml:"gain_index"`
}

// RxGainSet writes manual gain indices.
func (d *Device) RxGainSet(gains []RxGain) error {
	const op = "RxGainSet"
	if err := d.RxGainSetRangeCheck(gains); err != nil {
		return err
	}
	for _, g := range gains {
		for _, ch := range g.ChannelMask.Channels() {
			base, err := d.ResolveRxDigAddr(ch)
			if err != nil {
				return err
			}
			if err := d.writeField(op, base, fManualGainIndex, uint32(g.GainIndex)); err != nil {
				return err
			}
			d.log.Debug("gain index set", "channel", ch, "gain_index", g.GainIndex)
		}
	}
	return nil
}

// RxGainGet returns the active gain index of ch.
func (d *Device) RxGainGet(ch Channel) (uint8, error) {
	const op = "RxGainGet"
	if err := d.RxGainGetRangeCheck(ch); err != nil {
		return 0, err
	}
	base, err := d.ResolveRxDigAddr(ch)
	if err != nil {
		return 0, err
	}
	v, err := d.readField(op, base, fGainIndexReadback)
	return uint8(v), err
}

// RxMinMaxGainIndexSet sets the gain index bounds used by the AGC and the
// range checks of every channel in mask.
func (d *Device) RxMinMaxGainIndexSet(mask ChannelMask, minIndex, maxIndex uint8) error {
	const op = "RxMinMaxGainIndexSet"
	if err := d.RxMinMaxGainIndexSetRangeCheck(mask, minIndex, maxIndex); err != nil {
		return err
	}
	for _, ch := range mask.Channels() {
		base, err := d.ResolveRxDigAddr(ch)
		if err != nil {
			return err
		}
		err = d.writeFields(op, base, []fieldWrite{
			{fAgcMinGainIndex, uint32(minIndex)},
			{fAgcMaxGainIndex, uint32(maxIndex)},
		})
		if err != nil {
			return err
		}
		d.state.MinGainIndex[ch.index()] = minIndex
		d.state.MaxGainIndex[ch.index()] = maxIndex
	}
	return nil
}

// RxGainTableWrite writes rows into the gain table of every Rx channel in
// mask. rows[0] lands at gainIndexOffset and each following row one index
// lower. ORx bits are accepted and skipped. The written window becomes the
// channel's gain index range.
func (d *Device) RxGainTableWrite(mask ChannelMask, gainIndexOffset uint8, rows []GainTableRow) error {
	const op = "RxGainTableWrite"
	if err := d.RxGainTableWriteRangeCheck(mask, gainIndexOffset, rows); err != nil {
		return err
	}
	data := d.RxGainTableFormat(rows)
	lowest := int(gainIndexOffset) - len(rows) + 1

	for _, ch := range mask.Rx().Channels() {
		a, err := d.lookupRx(op, ch)
		if err != nil {
			return err
		}
		for i := range rows {
			addr := a.gainTable + uint32(int(gainIndexOffset)-i)*GainTableRowSize
			row := data[i*GainTableRowSize : (i+1)*GainTableRowSize]
			if err := d.write32(op, addr, d.order.Uint32(row[0:4]), gainWordMask); err != nil {
				return err
			}
			if err := d.write32(op, addr+4, d.order.Uint32(row[4:8]), gainWordMask); err != nil {
				return err
			}
		}
		d.state.MinGainIndex[ch.index()] = uint8(lowest)
		d.state.MaxGainIndex[ch.index()] = gainIndexOffset
		d.log.Debug("gain table written", "channel", ch, "offset", gainIndexOffset, "rows", len(rows))
	}
	return nil
}

// RxGainTableRead reads up to maxRows rows ending at gainIndexOffset.
// The result is ordered like RxGainTableWrite input, highest index first.
func (d *Device) RxGainTableRead(ch Channel, gainIndexOffset uint8, maxRows int) ([]GainTableRow, error) {
	const op = "RxGainTableRead"
	if err := d.RxGainTableReadRangeCheck(ch, gainIndexOffset, maxRows); err != nil {
		return nil, err
	}
	count, base, err := d.RxGainTableReadParamsCompute(ch, maxRows, gainIndexOffset)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, GainTableRowSize)
	rows := make([]GainTableRow, count)
	for i := 0; i < count; i++ {
		addr := base + uint32(i)*GainTableRowSize
		w0, err := d.read32(op, addr, gainWordMask)
		if err != nil {
			return nil, err
		}
		w1, err := d.read32(op, addr+4, gainWordMask)
		if err != nil {
			return nil, err
		}
		d.order.PutUint32(buf[0:4], w0)
		d.order.PutUint32(buf[4:8], w1)
		rows[count-1-i] = ParseRow(buf, d.order)
	}
	return rows, nil
}
