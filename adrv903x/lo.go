package adrv903x

// LoSource is the synthesizer feeding a receive mixer.
type LoSource uint8

const (
	LoSourceLo0 LoSource = iota
	LoSourceLo1
)

var loSourceNames = map[LoSource]string{
	LoSourceLo0: "lo0",
	LoSourceLo1: "lo1",
}

func (l LoSource) String() string { return enumString(l, loSourceNames) }

func (l LoSource) MarshalText() ([]byte, error) { return enumText(l, loSourceNames, "lo source") }

func (l *LoSource) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, loSourceNames, "lo source")
	*l = v
	return err
}

// RxLoSourceGet returns the LO feeding an Rx or ORx channel.
func (d *Device) RxLoSourceGet(ch Channel) (LoSource, error) {
	const op = "RxLoSourceGet"
	var base uint32
	var f Field
	var err error
	switch {
	case ch.IsRx():
		base, err = d.ResolveRxDigAddr(ch)
		f = fRxLoSelect
	case ch.IsOrx():
		base, err = d.ResolveOrxDigAddr(ch)
		f = fOrxLoSelect
	default:
		return 0, invalidChannel(op, ch, "not a single Rx or ORx channel")
	}
	if err != nil {
		return 0, err
	}
	v, err := d.readField(op, base, f)
	if err != nil {
		return 0, err
	}
	return LoSource(v), nil
}
