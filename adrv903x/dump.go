package adrv903x

// FieldValue is one named field read back by RegisterDump.
type FieldValue struct {
	Name        string `json:"name"`
	Block       string `json:"block"`
	Band        int    `json:"band"`
	Address     uint32 `json:"address"`
	Mask        uint32 `json:"mask"`
	Value       uint32 `json:"value"`
	Description string `json:"description"`
}

// RegisterDump reads every named formatter field of ch. DDC fields appear
// once per band; Band is -1 for fields outside the DDC blocks.
func (d *Device) RegisterDump(ch Channel) ([]FieldValue, error) {
	const op = "RegisterDump"
	if ch.IsOrx() {
		base, err := d.ResolveOrxDigAddr(ch)
		if err != nil {
			return nil, err
		}
		return d.dumpFields(op, orxDumpFields, func(Field) []uint32 { return []uint32{base} })
	}

	a, err := d.lookupRx(op, ch)
	if err != nil {
		return nil, err
	}
	return d.dumpFields(op, rxDumpFields, func(f Field) []uint32 {
		switch f.Block {
		case BlockDdc:
			return a.ddc[:]
		case BlockFuncs:
			return []uint32{a.funcs}
		}
		return []uint32{a.dig}
	})
}

func (d *Device) dumpFields(op string, fields []Field, bases func(Field) []uint32) ([]FieldValue, error) {
	var out []FieldValue
	for _, f := range fields {
		bs := bases(f)
		for band, base := range bs {
			v, err := d.readField(op, base, f)
			if err != nil {
				return nil, err
			}
			fv := FieldValue{
				Name:        f.Name,
				Block:       f.Block.String(),
				Band:        -1,
				Address:     base + f.Offset,
				Mask:        f.Mask,
				Value:       v,
				Description: f.Desc,
			}
			if f.Block == BlockDdc {
				fv.Band = band
			}
			out = append(out, fv)
		}
	}
	return out, nil
}
