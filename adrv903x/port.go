package adrv903x

import (
	"fmt"
	"math/bits"
	"sort"
	"sync"
)

// RegisterPort is the bit-field register access layer the core programs the
// transceiver through. Field values are right-aligned: WriteField shifts value
// up to the lowest set bit of mask and ReadField shifts it back down.
// Read32 and Write32 operate on raw, unshifted words.
type RegisterPort interface {
	ReadField(addr, mask uint32) (uint32, error)
	WriteField(addr, mask, value uint32) error
	Read32(addr, mask uint32) (uint32, error)
	Write32(addr, value, mask uint32) error
}

// FieldShift returns the bit position of the lowest set bit of mask.
func FieldShift(mask uint32) uint {
	if mask == 0 {
		return 0
	}
	return uint(bits.TrailingZeros32(mask))
}

// RegisterFile is an in-memory 32-bit register space. It backs the simulated
// transport and the tests. Unwritten registers read as zero.
type RegisterFile struct {
	mu   sync.Mutex
	regs map[uint32]uint32
}

// NewRegisterFile creates an empty register file.
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{regs: make(map[uint32]uint32)}
}

func (r *RegisterFile) ReadField(addr, mask uint32) (uint32, error) {
	if mask == 0 {
		return 0, fmt.Errorf("empty mask at 0x%08X", addr)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return (r.regs[addr] & mask) >> FieldShift(mask), nil
}

func (r *RegisterFile) WriteField(addr, mask, value uint32) error {
	if mask == 0 {
		return fmt.Errorf("empty mask at 0x%08X", addr)
	}
	shifted := value << FieldShift(mask)
	if shifted&^mask != 0 || shifted>>FieldShift(mask) != value {
		return fmt.Errorf("value 0x%X does not fit mask 0x%08X", value, mask)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs[addr] = (r.regs[addr] &^ mask) | shifted
	return nil
}

func (r *RegisterFile) Read32(addr, mask uint32) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.regs[addr] & mask, nil
}

func (r *RegisterFile) Write32(addr, value, mask uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs[addr] = (r.regs[addr] &^ mask) | (value & mask)
	return nil
}

// Snapshot returns a copy of every register that has been written.
func (r *RegisterFile) Snapshot() map[uint32]uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uint32]uint32, len(r.regs))
	for addr, v := range r.regs {
		out[addr] = v
	}
	return out
}

// Addresses lists written register addresses in ascending order.
func (r *RegisterFile) Addresses() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := make([]uint32, 0, len(r.regs))
	for addr := range r.regs {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Reset clears the register space back to power-on zeros.
func (r *RegisterFile) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs = make(map[uint32]uint32)
}
