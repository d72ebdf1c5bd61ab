// Package pmodcls controls a Digilent PmodCLS character LCD via SPI, UART or I2C.
//
// The PmodCLS shows a 16-character window onto 40-column lines and is driven by
// a text command set of escape sequences ("ESC [ parameters opcode").
//
// See the examples for how to use this package.
package pmodcls

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/flavioheleno/pmodcls/glyph"
)

// SPIFreq is the maximum SPI clock the display accepts.
const SPIFreq = 625 * physic.KiloHertz

// Opts is the configuration for the PmodCLS display.
type Opts struct {
	// I2C address (default: DefaultI2CAddr). Ignored by other transports.
	Addr uint16

	// Optional SPI select line. When nil, the SPI port's own chip select is
	// used for each transfer. Ignored by other transports.
	CS gpio.PinOut

	// Logger receives a debug event per command (optional, nil disables).
	Logger *zerolog.Logger

	// Init turns the display and backlight on and clears it once the
	// transport is ready.
	Init bool
}

// Dev is the device handle for the PmodCLS display.
//
// All methods are safe for concurrent use; each operation holds the handle
// for its whole validate, encode and send sequence.
type Dev struct {
	mu   sync.Mutex
	kind TransportKind
	sink Sink
	log  zerolog.Logger

	halted bool
}

// NewSPI creates a new PmodCLS device connected via SPI.
//
// The SPI port is configured for 625kHz, Mode0 (CPOL=0, CPHA=0), 8-bit transfers.
//
// opts can be nil to use defaults.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}

	c, err := p.Connect(SPIFreq, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("pmodcls: failed to connect SPI: %w", err)
	}

	if opts.CS != nil {
		if err := opts.CS.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("pmodcls: failed to release select line: %w", err)
		}
	}

	return New(SPI, &spiSink{c: c, cs: opts.CS}, opts)
}

// NewI2C creates a new PmodCLS device on an I2C bus.
//
// opts can be nil to use defaults (address 0x48).
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultI2CAddr
	}
	if addr > 0x7F {
		return nil, fmt.Errorf("pmodcls: invalid I2C address 0x%X", addr)
	}
	return New(I2C, &i2cSink{d: &i2c.Dev{Bus: b, Addr: addr}}, opts)
}

// NewUART creates a new PmodCLS device writing to a serial port, usually one
// opened by OpenUART. kind must be UART1 or UART2.
//
// opts can be nil to use defaults.
func NewUART(w io.Writer, kind TransportKind, opts *Opts) (*Dev, error) {
	if kind != UART1 && kind != UART2 {
		return nil, fmt.Errorf("%w: %s is not a UART", ErrTransportMismatch, kind)
	}
	return New(kind, &uartSink{w: w}, opts)
}

// New creates a device handle over an arbitrary sink.
func New(kind TransportKind, sink Sink, opts *Opts) (*Dev, error) {
	if sink == nil {
		return nil, ErrNoSink
	}
	if opts == nil {
		opts = &Opts{}
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	d := &Dev{
		kind: kind,
		sink: sink,
		log:  logger.With().Str("transport", kind.String()).Logger(),
	}

	if opts.Init {
		if err := d.SetDisplay(true, true); err != nil {
			return nil, err
		}
		if err := d.Clear(); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Transport returns the transport the device was created with.
func (d *Dev) Transport() TransportKind {
	return d.kind
}

// sendLocked delivers payload to the sink. d.mu must be held.
func (d *Dev) sendLocked(op string, payload []byte) error {
	if d.halted {
		return ErrHalted
	}
	if d.sink == nil {
		return ErrNoSink
	}
	if err := d.sink.Send(payload); err != nil {
		d.log.Error().Err(err).Str("op", op).Msg("send failed")
		return &CommError{Op: op, Err: err}
	}
	d.log.Debug().Str("op", op).Int("len", len(payload)).Hex("payload", payload).Msg("sent")
	return nil
}

// exec sends an encoded command, or returns the encoding error without
// touching the transport.
func (d *Dev) exec(op string, c Command, err error) error {
	if err != nil {
		d.log.Debug().Err(err).Str("op", op).Msg("rejected")
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sendLocked(op, c.Payload())
}

// SetDisplay switches the display and its backlight on or off.
func (d *Dev) SetDisplay(display, backlight bool) error {
	return d.exec("display", EncodeDisplay(display, backlight), nil)
}

// SetCursorMode shows or hides the cursor, optionally blinking.
func (d *Dev) SetCursorMode(cursor, blink bool) error {
	return d.exec("cursor mode", EncodeCursorMode(cursor, blink), nil)
}

// Clear clears the display and returns the cursor home.
func (d *Dev) Clear() error {
	return d.exec("clear", EncodeClear(), nil)
}

// SetPosition moves the cursor to (row, col).
func (d *Dev) SetPosition(row, col int) error {
	c, err := EncodePosition(row, col)
	return d.exec("set position", c, err)
}

// WriteStringAt writes s starting at (row, col). Text that would run past the
// last column is dropped.
func (d *Dev) WriteStringAt(row, col int, s string) error {
	c, err := EncodePosition(row, col)
	if err != nil {
		d.log.Debug().Err(err).Str("op", "write string").Msg("rejected")
		return err
	}
	text := []byte(s)
	if col+len(text) > Cols {
		text = text[:Cols-col]
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.sendLocked("set position", c.Payload()); err != nil {
		return err
	}
	if len(text) == 0 {
		return nil
	}
	return d.sendLocked("write string", text)
}

// WriteGlyphsAt displays the user glyphs at positions (each 0-7) starting at
// (row, col). Like WriteStringAt, glyphs past the last column are dropped.
func (d *Dev) WriteGlyphsAt(row, col int, positions ...byte) error {
	c, err := EncodePosition(row, col)
	code := Code(err)
	for _, p := range positions {
		if p >= glyph.Positions {
			code |= ErrGlyphPosition
			break
		}
	}
	if code != 0 {
		d.log.Debug().Err(code).Str("op", "write glyphs").Msg("rejected")
		return code
	}
	raw := append([]byte(nil), positions...)
	if col+len(raw) > Cols {
		raw = raw[:Cols-col]
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.sendLocked("set position", c.Payload()); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return d.sendLocked("write glyphs", raw)
}

// Scroll shifts the display cols columns in dir.
func (d *Dev) Scroll(dir Direction, cols int) error {
	c, err := EncodeScroll(dir, cols)
	return d.exec("scroll", c, err)
}

// SaveCursor saves the cursor position on the device.
func (d *Dev) SaveCursor() error {
	return d.exec("save cursor", EncodeSaveCursor(), nil)
}

// RestoreCursor moves the cursor back to the position saved by SaveCursor.
func (d *Dev) RestoreCursor() error {
	return d.exec("restore cursor", EncodeRestoreCursor(), nil)
}

// SetWrapMode selects whether lines wrap at 16 or 40 characters.
func (d *Dev) SetWrapMode(m WrapMode) error {
	c, err := EncodeWrapMode(m)
	return d.exec("wrap mode", c, err)
}

// EraseInLine erases part of the current line.
func (d *Dev) EraseInLine(m EraseMode) error {
	c, err := EncodeEraseInLine(m)
	return d.exec("erase in line", c, err)
}

// EraseChars erases n characters starting at the cursor.
func (d *Dev) EraseChars(n int) error {
	c, err := EncodeEraseChars(n)
	return d.exec("erase chars", c, err)
}

// Reset resets the device.
func (d *Dev) Reset() error {
	return d.exec("reset", EncodeReset(), nil)
}

// SaveI2CAddress stores the I2C address in EEPROM. It takes effect when the
// communication mode is CommI2CEEPROM.
func (d *Dev) SaveI2CAddress(addr uint16) error {
	c, err := EncodeSaveI2CAddress(addr)
	return d.exec("save i2c address", c, err)
}

// SaveBaudRate stores the UART baud rate in EEPROM. It takes effect when the
// communication mode is CommUARTEEPROM.
func (d *Dev) SaveBaudRate(b BaudRate) error {
	c, err := EncodeSaveBaudRate(b)
	return d.exec("save baud rate", c, err)
}

// ProgramCharTable programs the active character set from table (0-3).
func (d *Dev) ProgramCharTable(table int) error {
	c, err := EncodeProgramCharTable(table)
	return d.exec("program char table", c, err)
}

// SaveCharTable saves RAM character table (0-3) to EEPROM.
func (d *Dev) SaveCharTable(table int) error {
	c, err := EncodeSaveCharTable(table)
	return d.exec("save char table", c, err)
}

// LoadCharTable loads EEPROM character table (0-3) into RAM.
func (d *Dev) LoadCharTable(table int) error {
	c, err := EncodeLoadCharTable(table)
	return d.exec("load char table", c, err)
}

// SaveCommMode stores the communication mode in EEPROM.
func (d *Dev) SaveCommMode(m CommMode) error {
	c, err := EncodeSaveCommMode(m)
	return d.exec("save comm mode", c, err)
}

// EnableEEPROMWrite unlocks the EEPROM for the Save* operations.
func (d *Dev) EnableEEPROMWrite() error {
	return d.exec("enable eeprom write", EncodeEnableEEPROMWrite(), nil)
}

// SaveCursorMode stores the power-on cursor mode in EEPROM.
func (d *Dev) SaveCursorMode(m CursorMode) error {
	c, err := EncodeSaveCursorMode(m)
	return d.exec("save cursor mode", c, err)
}

// SaveDisplayMode stores the power-on display mode in EEPROM.
func (d *Dev) SaveDisplayMode(m DisplayMode) error {
	c, err := EncodeSaveDisplayMode(m)
	return d.exec("save display mode", c, err)
}

// DefineGlyph stores g at user character position pos (0-7) and activates it.
func (d *Dev) DefineGlyph(g glyph.Glyph, pos int) error {
	c, err := EncodeDefineGlyph(g, pos)
	return d.exec("define glyph", c, err)
}

// Halt turns the display and backlight off.
// After calling Halt, the device will not accept further commands.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return nil
	}
	err := d.sendLocked("halt", EncodeDisplay(false, false).Payload())
	d.halted = true
	return err
}

// Close releases the transport. Serial ports are closed; SPI and I2C buses
// belong to the caller and are left open.
func (d *Dev) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.sink
	d.sink = nil
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sink == nil {
		return fmt.Sprintf("pmodcls.Dev{%s, closed}", d.kind)
	}
	return fmt.Sprintf("pmodcls.Dev{%s}", d.sink)
}
