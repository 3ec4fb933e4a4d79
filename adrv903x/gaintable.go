package adrv903x

import "encoding/binary"

// Gain table limits.
const (
	MinRxGainTableIndex = 0
	StartRxGainIndex    = 255
	GainTableRowSize    = 8

	MinDigGain    = -360
	MaxDigGain    = 1000
	MaxExtControl = 3
)

const (
	digGainMask     = 0x7FF
	digGainSignBit  = 0x400
	digGainShift    = 8
	extControlShift = 16
)

// GainTableRow is one entry of an Rx gain table.
// DigGain is in 0.1 dB steps.
type GainTableRow struct {
	RxFeGain    uint8  `json:"rx_fe_gain" yaml:"rx_fe_gain"`
	ExtControl  uint8  `json:"ext_control" yaml:"ext_control"`
	PhaseOffset uint16 `json:"phase_offset" yaml:"phase_offset"`
	DigGain     int16  `json:"dig_gain" yaml:"dig_gain"`
}

// FormatRow packs r into its 8 byte hardware layout. Each 4 byte half is
// one 32-bit word written in order.
func FormatRow(r GainTableRow, order binary.ByteOrder) [GainTableRowSize]byte {
	var out [GainTableRowSize]byte
	// Negative gains are stored as 11-bit two's complement.
	w0 := uint32(r.RxFeGain) | (uint32(uint16(r.DigGain))&digGainMask)<<digGainShift
	w1 := uint32(r.PhaseOffset) | uint32(r.ExtControl&MaxExtControl)<<extControlShift
	order.PutUint32(out[0:4], w0)
	order.PutUint32(out[4:8], w1)
	return out
}

// ParseRow is the inverse of FormatRow.
func ParseRow(b []byte, order binary.ByteOrder) GainTableRow {
	w0 := order.Uint32(b[0:4])
	w1 := order.Uint32(b[4:8])

	raw := uint16((w0 >> digGainShift) & digGainMask)
	if raw&digGainSignBit != 0 {
		raw |= ^uint16(digGainMask)
	}
	return GainTableRow{
		RxFeGain:    uint8(w0),
		DigGain:     int16(raw),
		PhaseOffset: uint16(w1),
		ExtControl:  uint8(w1>>extControlShift) & MaxExtControl,
	}
}

// RxGainTableFormat packs rows using the device byte order.
func (d *Device) RxGainTableFormat(rows []GainTableRow) []byte {
	out := make([]byte, 0, len(rows)*GainTableRowSize)
	for _, r := range rows {
		b := FormatRow(r, d.order)
		out = append(out, b[:]...)
	}
	return out
}

// RxGainTableParse unpacks a formatted table.
func (d *Device) RxGainTableParse(b []byte) ([]GainTableRow, error) {
	if len(b)%GainTableRowSize != 0 {
		return nil, invalidParam("RxGainTableParse", "length", "%d bytes is not a whole number of rows", len(b))
	}
	rows := make([]GainTableRow, 0, len(b)/GainTableRowSize)
	for off := 0; off < len(b); off += GainTableRowSize {
		rows = append(rows, ParseRow(b[off:off+GainTableRowSize], d.order))
	}
	return rows, nil
}

// RxGainTableReadParamsCompute returns how many rows a read of up to maxCount
// rows ending at offset yields and the address of the lowest row.
func (d *Device) RxGainTableReadParamsCompute(ch Channel, maxCount int, offset uint8) (int, uint32, error) {
	const op = "RxGainTableReadParamsCompute"
	a, err := d.lookupRx(op, ch)
	if err != nil {
		return 0, 0, err
	}
	minIndex := int(d.state.MinGainIndex[ch.index()])
	if int(offset) < minIndex {
		return 0, 0, invalidParam(op, "gain_index_offset", "offset %d below min gain index %d", offset, minIndex)
	}
	count := min(maxCount, int(offset)-minIndex+1)
	base := a.gainTable + uint32(int(offset)-count+1)*GainTableRowSize
	return count, base, nil
}
