package plugins

// ADRV903x SPI direct register addresses (15-bit)
const (
	// Interface configuration
	RegInterfaceConfigA = 0x0000 // Soft reset, LSB first, address ascension, SDO active
	RegInterfaceConfigB = 0x0001 // Single instruction mode
	RegChipType         = 0x0003 // Chip type
	RegProductID0       = 0x0004 // Product ID LSB
	RegProductID1       = 0x0005 // Product ID MSB
	RegChipGrade        = 0x0006 // Silicon revision
	RegScratchPad       = 0x000A // Free scratch register

	// SPI to AHB bridge used for the 32-bit register space
	RegSpiDmaCtl   = 0x0040 // Bridge control
	RegSpiDmaAddr3 = 0x0041 // Bus address bits 31:24
	RegSpiDmaAddr2 = 0x0042 // Bus address bits 23:16
	RegSpiDmaAddr1 = 0x0043 // Bus address bits 15:8
	RegSpiDmaAddr0 = 0x0044 // Bus address bits 7:0, writing starts a read cycle
	RegSpiDmaData3 = 0x0045 // Bus data bits 31:24
	RegSpiDmaData2 = 0x0046 // Bus data bits 23:16
	RegSpiDmaData1 = 0x0047 // Bus data bits 15:8
	RegSpiDmaData0 = 0x0048 // Bus data bits 7:0, writing starts a write cycle
)

// SPI frame bits
const (
	SpiReadBit  = 0x80   // Set in the first address byte for reads
	SpiAddrMask = 0x7FFF // Direct register address width
)

// RegSpiDmaCtl (0x0040) bits
const (
	DmaCtlRead     = 1 << 7 // Bus cycle direction: 1 = read
	DmaCtlSizeWord = 2 << 5 // 32-bit bus transfers
	DmaCtlBusError = 1 << 0 // Sticky bus error flag
)

// InterfaceConfigA value selecting 4-wire SPI, MSB first, descending addresses
const InterfaceConfigA4Wire = 0x18

// ADRV903x product ID
const ProductIDAdrv903x = 0x9030

// Register descriptions for UI
var RegisterDescriptions = map[uint16]string{
	RegInterfaceConfigA: "INTERFACE_CONFIG_A - Soft reset and SPI mode",
	RegInterfaceConfigB: "INTERFACE_CONFIG_B - Single instruction",
	RegChipType:         "CHIP_TYPE - Chip type",
	RegProductID0:       "PRODUCT_ID_0 - Product ID LSB",
	RegProductID1:       "PRODUCT_ID_1 - Product ID MSB",
	RegChipGrade:        "CHIP_GRADE - Silicon revision",
	RegScratchPad:       "SCRATCH_PAD - Scratch register",
	RegSpiDmaCtl:        "SPI_DMA_CTL - AHB bridge control",
	RegSpiDmaAddr3:      "SPI_DMA_ADDR3 - Bus address 31:24",
	RegSpiDmaAddr2:      "SPI_DMA_ADDR2 - Bus address 23:16",
	RegSpiDmaAddr1:      "SPI_DMA_ADDR1 - Bus address 15:8",
	RegSpiDmaAddr0:      "SPI_DMA_ADDR0 - Bus address 7:0",
	RegSpiDmaData3:      "SPI_DMA_DATA3 - Bus data 31:24",
	RegSpiDmaData2:      "SPI_DMA_DATA2 - Bus data 23:16",
	RegSpiDmaData1:      "SPI_DMA_DATA1 - Bus data 15:8",
	RegSpiDmaData0:      "SPI_DMA_DATA0 - Bus data 7:0",
}

// directRegisterOrder lists the direct registers in address order
var directRegisterOrder = []uint16{
	RegInterfaceConfigA, RegInterfaceConfigB, RegChipType, RegProductID0, RegProductID1,
	RegChipGrade, RegScratchPad, RegSpiDmaCtl,
}
