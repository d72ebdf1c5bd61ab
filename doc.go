// Package pmodcls controls a Digilent PmodCLS character LCD.
//
// The PmodCLS accepts the same text command set over SPI, UART or I2C. Every
// command is an escape sequence: ESC '[' followed by ASCII parameters and a
// one byte opcode. This driver encodes those commands, validates their
// arguments and delivers them over whichever bus the display is wired to.
//
// # Display Characteristics
//
// - 16 visible characters per line, 40 columns of line memory
// - Rows 0-2, columns 0-39
// - Eight user-definable 5x8 glyphs, four character tables
// - EEPROM-backed settings (baud rate, I2C address, communication mode,
// cursor and display modes)
//
// # Hardware Connection
//
// Select the interface with the mode jumpers, then connect one of:
//
//	SPI:  SS → chip select (or any GPIO), MOSI → MOSI, SCK → SCLK
//	UART: RX → TX (9600 8N1 by default)
//	I2C:  SDA → SDA, SCL → SCL (address 0x48 by default)
//
// # Basic Usage
//
// Example of creating and using the display over SPI:
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/spi/spireg"
//		"github.com/flavioheleno/pmodcls"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		// Open SPI bus
//		spiBus, _ := spireg.Open("")
//
//		// Create device
//		dev, _ := pmodcls.NewSPI(spiBus, &pmodcls.Opts{Init: true})
//		defer dev.Halt()
//
//		dev.WriteStringAt(0, 0, "Hello")
//	}
//
// Over I2C:
//
//	bus, _ := i2creg.Open("")
//	dev, _ := pmodcls.NewI2C(bus, &pmodcls.Opts{Addr: 0x48})
//
// Over UART:
//
//	port, _ := pmodcls.OpenUART("/dev/ttyS0", 9600)
//	dev, _ := pmodcls.NewUART(port, pmodcls.UART1, nil)
//	defer dev.Close()
//
// # Using an Explicit Select Line (Optional)
//
// If the SS pin is wired to a GPIO instead of the SPI controller's chip select,
// pass it in Opts. The driver then holds it low for a whole command, which also
// lets long commands be split to the controller's transfer size:
//
//	ss := gpioreg.ByName("GPIO8")
//	dev, _ := pmodcls.NewSPI(spiBus, &pmodcls.Opts{CS: ss})
//
// # Errors
//
// Argument range violations are reported as an ErrorCode bitmask, one bit per
// invalid argument. Nothing is sent when any bit is set:
//
//	err := dev.SetPosition(5, 50)
//	code := pmodcls.Code(err)
//	code.Has(pmodcls.ErrRow)    // true
//	code.Has(pmodcls.ErrColumn) // true
//
// Transport failures are returned as *CommError. There is no acknowledgement
// from the display, so a nil error only means the bytes left the host.
//
// # I2C Transfers
//
// The display buffers 32 bytes per I2C transaction. Payloads longer than
// MaxI2CPayload (30 bytes) are split into several transactions, in order.
//
// # Custom Glyphs
//
// Define a glyph at position 0-7, then show it by position:
//
//	heart := glyph.MustParse(
//		".....",
//		".#.#.",
//		"#####",
//		"#####",
//		".###.",
//		"..#..",
//	)
//	dev.DefineGlyph(heart, 0)
//	dev.WriteGlyphsAt(1, 0, 0)
//
// # Persisting Settings
//
// EEPROM writes must be enabled first:
//
//	dev.EnableEEPROMWrite()
//	dev.SaveBaudRate(pmodcls.Baud9600)
//	dev.SaveCommMode(pmodcls.CommUARTEEPROM)
//
// # Reference Manual
//
// https://digilent.com/reference/pmod/pmodcls/reference-manual
package pmodcls
