package adrv903x

import (
	"errors"
	"testing"
)

func TestChannelMask(t *testing.T) {
	m := MaskOf(Rx0, Rx3, ORx1)
	if got := m.String(); got != "rx0|rx3|orx1" {
		t.Errorf("String() = %q", got)
	}
	if m.Count() != 3 || m.Rx() != MaskOf(Rx0, Rx3) || m.Orx() != ORx1.Mask() {
		t.Errorf("subset helpers wrong for %s", m)
	}
	if !m.Has(Rx3) || m.Has(Rx1) || m.Has(ChannelNone) {
		t.Error("Has() wrong")
	}
	if MaskAll.Count() != NumRxChannels+NumOrxChannels {
		t.Errorf("MaskAll has %d channels", MaskAll.Count())
	}
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		in   string
		want Channel
		ok   bool
	}{
		{"rx0", Rx0, true},
		{"RX7", Rx7, true},
		{" orx1 ", ORx1, true},
		{"tx0", ChannelNone, false},
	}
	for _, tt := range tests {
		got, err := ParseChannel(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseChannel(%q) = %s, %v", tt.in, got, err)
		}
	}
}

func TestChannelIndex(t *testing.T) {
	if Rx5.index() != 5 || ORx0.index() != 0 || ORx1.index() != 1 {
		t.Error("index() wrong")
	}
	if Channel(Rx0|Rx1).IsRx() {
		t.Error("multi-bit value must not be a single Rx channel")
	}
}

func TestResolveAddresses(t *testing.T) {
	d, _ := newTestDevice(t)

	dig, err := d.ResolveRxDigAddr(Rx2)
	if err != nil || dig != rxDigBase[2] {
		t.Errorf("ResolveRxDigAddr(rx2) = 0x%08X, %v", dig, err)
	}
	ddc, err := d.ResolveDdcAddr(Rx7, 1)
	if err != nil || ddc != rxDdcBase[7][1] {
		t.Errorf("ResolveDdcAddr(rx7, 1) = 0x%08X, %v", ddc, err)
	}
	i, q, err := d.ResolveAnalogIQAddrs(Rx1)
	if err != nil || i != rxAnalogBase[1][0] || q != rxAnalogBase[1][1] {
		t.Errorf("ResolveAnalogIQAddrs(rx1) = 0x%08X 0x%08X, %v", i, q, err)
	}
	orx, err := d.ResolveOrxDigAddr(ORx1)
	if err != nil || orx != orxDigBase[1] {
		t.Errorf("ResolveOrxDigAddr(orx1) = 0x%08X, %v", orx, err)
	}

	if _, err := d.ResolveDdcAddr(Rx0, 2); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("band 2: got %v", err)
	}
	if _, err := d.ResolveRxDigAddr(ORx0); !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("ORx on Rx resolver: got %v", err)
	}
	if _, err := d.ResolveOrxDigAddr(Rx0); !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("Rx on ORx resolver: got %v", err)
	}
}

func TestResolveUninitializedChannel(t *testing.T) {
	state := NewState()
	state.InitializedChannels = MaskOf(Rx0, ORx0)
	d, err := New(NewRegisterFile(), state)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.ResolveFuncsAddr(Rx1); !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("rx1: got %v, want ErrInvalidChannel", err)
	}
	if _, err := d.ResolveOrxDigAddr(ORx1); !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("orx1: got %v, want ErrInvalidChannel", err)
	}
	if _, err := d.GetMode(ORx1); !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("GetMode(orx1): got %v, want ErrInvalidChannel", err)
	}
	if _, err := d.ResolveFuncsAddr(Rx0); err != nil {
		t.Errorf("rx0: %v", err)
	}
}
