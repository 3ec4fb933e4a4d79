package plugins

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/linht/adrv-manager/adrv903x"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const wordMask = 0xFFFFFFFF

// SPIDevice talks to the transceiver over SPI using periph.io. Direct
// registers use 3-byte frames; the 32-bit register space is reached through
// the SPI to AHB bridge. SPIDevice implements adrv903x.RegisterPort.
type SPIDevice struct {
	conn    spi.Conn
	port    spi.PortCloser
	device  string
	speed   physic.Frequency
	retries uint64
}

// ChipInfo identifies the part behind the SPI port
type ChipInfo struct {
	ChipType  uint8  `json:"chip_type"`
	ProductID uint16 `json:"product_id"`
	Revision  uint8  `json:"revision"`
}

// NewSPIDevice opens and initializes an SPI device using periph.io
func NewSPIDevice(device string, speed uint32, retries uint64) (*SPIDevice, error) {
	// Initialize periph.io host
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph.io: %w", err)
	}

	port, err := spireg.Open(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI device %s: %w", device, err)
	}

	// ADRV903x samples on the rising edge: SPI Mode 0
	conn, err := port.Connect(physic.Frequency(speed)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to connect to SPI device: %w", err)
	}

	s := newSPIDeviceConn(conn, retries)
	s.port = port
	s.device = device
	s.speed = physic.Frequency(speed) * physic.Hertz
	return s, nil
}

func newSPIDeviceConn(conn spi.Conn, retries uint64) *SPIDevice {
	return &SPIDevice{conn: conn, retries: retries}
}

// Close closes the SPI device
func (s *SPIDevice) Close() error {
	if s.port != nil {
		return s.port.Close()
	}
	return nil
}

// Transfer performs a full-duplex SPI transfer, retrying transient failures
func (s *SPIDevice) Transfer(tx []byte, rx []byte) error {
	if len(tx) != len(rx) {
		return fmt.Errorf("tx and rx buffers must be the same length")
	}

	if s.conn == nil {
		return fmt.Errorf("SPI device not open")
	}

	op := func() error {
		return s.conn.Tx(tx, rx)
	}
	b := backoff.WithMaxRetries(&backoff.ExponentialBackOff{
		InitialInterval:     50 * time.Microsecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         5 * time.Millisecond,
		MaxElapsedTime:      50 * time.Millisecond,
		Clock:               backoff.SystemClock}, s.retries)
	if err := backoff.Retry(op, b); err != nil {
		return fmt.Errorf("SPI transfer failed: %w", err)
	}
	return nil
}

// WriteDirect writes a direct SPI register
func (s *SPIDevice) WriteDirect(addr uint16, value uint8) error {
	addr &= SpiAddrMask
	tx := []byte{uint8(addr >> 8), uint8(addr), value}
	rx := make([]byte, len(tx))

	if err := s.Transfer(tx, rx); err != nil {
		return fmt.Errorf("failed to write register 0x%04X: %w", addr, err)
	}
	return nil
}

// ReadDirect reads a direct SPI register
func (s *SPIDevice) ReadDirect(addr uint16) (uint8, error) {
	addr &= SpiAddrMask
	tx := []byte{uint8(addr>>8) | SpiReadBit, uint8(addr), 0x00}
	rx := make([]byte, len(tx))

	if err := s.Transfer(tx, rx); err != nil {
		return 0, fmt.Errorf("failed to read register 0x%04X: %w", addr, err)
	}

	// Data is clocked out in the third byte
	return rx[2], nil
}

func (s *SPIDevice) writeDirectSeq(addrs []uint16, values []uint8) error {
	for i, addr := range addrs {
		if err := s.WriteDirect(addr, values[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *SPIDevice) setBusAddress(ctl uint8, addr uint32) error {
	return s.writeDirectSeq(
		[]uint16{RegSpiDmaCtl, RegSpiDmaAddr3, RegSpiDmaAddr2, RegSpiDmaAddr1, RegSpiDmaAddr0},
		[]uint8{ctl, uint8(addr >> 24), uint8(addr >> 16), uint8(addr >> 8), uint8(addr)},
	)
}

func (s *SPIDevice) checkBusError(addr uint32) error {
	ctl, err := s.ReadDirect(RegSpiDmaCtl)
	if err != nil {
		return err
	}
	if ctl&DmaCtlBusError != 0 {
		return fmt.Errorf("bus error at 0x%08X", addr)
	}
	return nil
}

func (s *SPIDevice) readWord(addr uint32) (uint32, error) {
	if err := s.setBusAddress(DmaCtlRead|DmaCtlSizeWord, addr); err != nil {
		return 0, err
	}
	if err := s.checkBusError(addr); err != nil {
		return 0, err
	}
	var word uint32
	for _, reg := range []uint16{RegSpiDmaData3, RegSpiDmaData2, RegSpiDmaData1, RegSpiDmaData0} {
		b, err := s.ReadDirect(reg)
		if err != nil {
			return 0, err
		}
		word = word<<8 | uint32(b)
	}
	return word, nil
}

func (s *SPIDevice) writeWord(addr, word uint32) error {
	if err := s.setBusAddress(DmaCtlSizeWord, addr); err != nil {
		return err
	}
	err := s.writeDirectSeq(
		[]uint16{RegSpiDmaData3, RegSpiDmaData2, RegSpiDmaData1, RegSpiDmaData0},
		[]uint8{uint8(word >> 24), uint8(word >> 16), uint8(word >> 8), uint8(word)},
	)
	if err != nil {
		return err
	}
	return s.checkBusError(addr)
}

// Read32 reads a bus register and applies mask
func (s *SPIDevice) Read32(addr, mask uint32) (uint32, error) {
	word, err := s.readWord(addr)
	if err != nil {
		return 0, err
	}
	return word & mask, nil
}

// Write32 writes the bits of value selected by mask, preserving the rest
func (s *SPIDevice) Write32(addr, value, mask uint32) error {
	if mask != wordMask {
		cur, err := s.readWord(addr)
		if err != nil {
			return err
		}
		value = cur&^mask | value&mask
	}
	return s.writeWord(addr, value)
}

// ReadField reads a right-aligned bit field
func (s *SPIDevice) ReadField(addr, mask uint32) (uint32, error) {
	if mask == 0 {
		return 0, fmt.Errorf("empty mask at 0x%08X", addr)
	}
	word, err := s.readWord(addr)
	if err != nil {
		return 0, err
	}
	return (word & mask) >> adrv903x.FieldShift(mask), nil
}

// WriteField writes a right-aligned bit field with read-modify-write
func (s *SPIDevice) WriteField(addr, mask, value uint32) error {
	if mask == 0 {
		return fmt.Errorf("empty mask at 0x%08X", addr)
	}
	shift := adrv903x.FieldShift(mask)
	shifted := value << shift
	if shifted&^mask != 0 || shifted>>shift != value {
		return fmt.Errorf("value 0x%X does not fit mask 0x%08X", value, mask)
	}
	return s.Write32(addr, shifted, mask)
}

// Configure selects 4-wire SPI with MSB first framing
func (s *SPIDevice) Configure() error {
	return s.WriteDirect(RegInterfaceConfigA, InterfaceConfigA4Wire)
}

// CheckDevice verifies SPI communication by reading the identification registers
func (s *SPIDevice) CheckDevice() (ChipInfo, error) {
	var info ChipInfo
	vals := make([]uint8, 4)
	for i, reg := range []uint16{RegChipType, RegProductID0, RegProductID1, RegChipGrade} {
		v, err := s.ReadDirect(reg)
		if err != nil {
			return info, fmt.Errorf("failed to read identification: %w", err)
		}
		vals[i] = v
	}
	info.ChipType = vals[0]
	info.ProductID = uint16(vals[2])<<8 | uint16(vals[1])
	info.Revision = vals[3]
	if info.ProductID != ProductIDAdrv903x {
		return info, fmt.Errorf("unexpected product id 0x%04X", info.ProductID)
	}
	return info, nil
}

// ReadDirectRegisters reads every known direct register
func (s *SPIDevice) ReadDirectRegisters() (map[uint16]uint8, error) {
	out := make(map[uint16]uint8, len(directRegisterOrder))
	for _, reg := range directRegisterOrder {
		v, err := s.ReadDirect(reg)
		if err != nil {
			return nil, err
		}
		out[reg] = v
	}
	return out, nil
}

// DeviceInfo provides information about the SPI device
func (s *SPIDevice) DeviceInfo() string {
	if s.conn == nil {
		return fmt.Sprintf("Device: %s (closed)", s.device)
	}
	return fmt.Sprintf("Device: %s, Speed: %s", s.device, s.speed)
}

// ValidateSPIDevice checks if the device can be opened
func ValidateSPIDevice(device string) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph.io: %w", err)
	}

	port, err := spireg.Open(device)
	if err != nil {
		return fmt.Errorf("SPI device %s not accessible: %w", device, err)
	}
	defer port.Close()

	return nil
}
