package adrv903x

import (
	"errors"
	"testing"
)

var errInjected = errors.New("injected spi failure")

// failingPort fails every write to failAddr and passes everything else through.
type failingPort struct {
	RegisterPort
	failAddr uint32
	writes   int
}

func (f *failingPort) WriteField(addr, mask, value uint32) error {
	if addr == f.failAddr {
		return errInjected
	}
	f.writes++
	return f.RegisterPort.WriteField(addr, mask, value)
}

func newTestDevice(t *testing.T) (*Device, *RegisterFile) {
	t.Helper()
	regs := NewRegisterFile()
	dev, err := New(regs, NewState())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return dev, regs
}

func mustMode(t *testing.T, d *Device, ch Channel, want DataFormatMode) {
	t.Helper()
	got, err := d.GetMode(ch)
	if err != nil {
		t.Fatalf("GetMode(%s): %v", ch, err)
	}
	if got != want {
		t.Fatalf("GetMode(%s) = %s, want %s", ch, got, want)
	}
}

func TestNewRejectsNil(t *testing.T) {
	if _, err := New(nil, NewState()); !errors.Is(err, ErrNullPointer) {
		t.Errorf("nil regs: got %v, want ErrNullPointer", err)
	}
	if _, err := New(NewRegisterFile(), nil); !errors.Is(err, ErrNullPointer) {
		t.Errorf("nil state: got %v, want ErrNullPointer", err)
	}
}

func TestRegisterFileFieldShift(t *testing.T) {
	r := NewRegisterFile()
	if err := r.WriteField(0x100, 0x000000F0, 0xA); err != nil {
		t.Fatal(err)
	}
	if err := r.WriteField(0x100, 0x00000001, 1); err != nil {
		t.Fatal(err)
	}
	if raw, _ := r.Read32(0x100, 0xFFFFFFFF); raw != 0xA1 {
		t.Errorf("raw = 0x%X, want 0xA1", raw)
	}
	if v, _ := r.ReadField(0x100, 0x000000F0); v != 0xA {
		t.Errorf("field = 0x%X, want 0xA", v)
	}
	if err := r.WriteField(0x100, 0x00000006, 4); err == nil {
		t.Error("expected overflow error for value wider than mask")
	}
}

func TestErrorMessageNamesField(t *testing.T) {
	err := invalidParam("RxGainSet", "gain_index", "%d outside [%d, %d]", 300, 0, 255)
	want := "RxGainSet: invalid parameter (gain_index): 300 outside [0, 255]"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrInvalidParam) || errors.Is(err, ErrInvalidChannel) {
		t.Error("kind matching is wrong")
	}
}
