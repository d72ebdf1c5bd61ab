package pmodcls

import (
	"fmt"
	"strconv"

	"github.com/flavioheleno/pmodcls/glyph"
)

// Display geometry as seen by the command set.
const (
	Rows = 3
	Cols = 40
)

// Escape prefix and opcodes of the command set.
const (
	esc     = 0x1B
	bracket = 0x5B // [

	opCursorPos      = 0x48 // H
	opCursorSave     = 0x73 // s
	opCursorRestore  = 0x75 // u
	opClear          = 0x6A // j
	opEraseInLine    = 0x4B // K
	opEraseChars     = 0x4E // N
	opScrollLeft     = 0x40 // @
	opScrollRight    = 0x41 // A
	opReset          = 0x2A // *
	opDisplay        = 0x65 // e
	opWrapMode       = 0x68 // h
	opCursorMode     = 0x63 // c
	opSaveI2CAddr    = 0x61 // a
	opSaveBaud       = 0x62 // b
	opProgramTable   = 0x70 // p
	opSaveTable      = 0x74 // t
	opLoadTable      = 0x6C // l
	opDefineChar     = 0x64 // d
	opSaveCommMode   = 0x6D // m
	opEEPROMWrEnable = 0x77 // w
	opSaveCursorMode = 0x6E // n
	opSaveDispMode   = 0x6F // o
)

// glyphTable is the character table a freshly defined glyph is activated from.
const glyphTable = 3

// Command is one encoded device command: ESC '[' parameters opcode, followed
// by a zero terminator. The terminator is part of the documented format but
// is never sent; Payload returns the bytes that go on the wire.
type Command []byte

// Payload returns c without its zero terminator.
func (c Command) Payload() []byte {
	if n := len(c); n > 0 && c[n-1] == 0 {
		return c[:n-1]
	}
	return c
}

func (c Command) String() string {
	return fmt.Sprintf("% X", []byte(c.Payload()))
}

// command builds ESC [ params opcode 0.
func command(opcode byte, params ...byte) Command {
	c := make(Command, 0, len(params)+5)
	c = append(c, esc, bracket)
	c = append(c, params...)
	return append(c, opcode, 0)
}

// Direction is the scroll direction.
type Direction uint8

const (
	Left Direction = iota
	Right
)

// WrapMode selects where the display wraps a line.
type WrapMode uint8

const (
	Wrap16 WrapMode = iota // wrap at 16 characters
	Wrap40                 // wrap at 40 characters
)

// EraseMode selects which part of the current line EraseInLine clears.
type EraseMode uint8

const (
	EraseToEnd     EraseMode = iota // from the cursor to the end of the line
	EraseFromStart                  // from the start of the line to the cursor
	EraseLine                       // the whole line
)

// BaudRate is the UART speed index stored in EEPROM.
type BaudRate uint8

const (
	Baud2400 BaudRate = iota
	Baud4800
	Baud9600
	Baud19200
	Baud38400
	Baud76800
	Baud115200
)

// CommMode is the communication mode the display boots into, stored in
// EEPROM. It overrides the mode jumpers when set to anything but CommJumpers.
type CommMode uint8

const (
	CommUART2400   CommMode = iota // UART at 2400 baud
	CommUART4800                   // UART at 4800 baud
	CommUART9600                   // UART at 9600 baud
	CommUARTEEPROM                 // UART at the baud rate saved in EEPROM
	CommI2C                        // I2C at DefaultI2CAddr
	CommI2CEEPROM                  // I2C at the address saved in EEPROM
	CommSPI                        // SPI
	CommJumpers                    // as selected by the mode jumpers
)

// CursorMode is the cursor appearance.
type CursorMode uint8

const (
	CursorOff CursorMode = iota
	CursorOn
	CursorBlink
)

// DisplayMode is the display/backlight combination.
type DisplayMode uint8

const (
	DisplayOffBacklightOff DisplayMode = iota
	DisplayOnBacklightOff
	DisplayOffBacklightOn
	DisplayOnBacklightOn
)

func digit(v uint8) byte {
	return '0' + v
}

func checkPosition(row, col int) ErrorCode {
	var code ErrorCode
	if row < 0 || row >= Rows {
		code |= ErrRow
	}
	if col < 0 || col >= Cols {
		code |= ErrColumn
	}
	return code
}

// EncodeDisplay encodes the display and backlight switch.
func EncodeDisplay(display, backlight bool) Command {
	var m DisplayMode
	if display {
		m |= DisplayOnBacklightOff
	}
	if backlight {
		m |= DisplayOffBacklightOn
	}
	return command(opDisplay, digit(uint8(m)))
}

// EncodeCursorMode encodes the cursor mode. blink is ignored when the cursor
// is off.
func EncodeCursorMode(cursor, blink bool) Command {
	m := CursorOff
	switch {
	case cursor && blink:
		m = CursorBlink
	case cursor:
		m = CursorOn
	}
	return command(opCursorMode, digit(uint8(m)))
}

// EncodeClear encodes clear display and cursor home.
func EncodeClear() Command {
	return command(opClear, '0')
}

// EncodePosition encodes a cursor move to (row, col).
func EncodePosition(row, col int) (Command, error) {
	if code := checkPosition(row, col); code != 0 {
		return nil, code
	}
	return command(opCursorPos, digit(uint8(row)), ';', digit(uint8(col/10)), digit(uint8(col%10))), nil
}

// EncodeScroll encodes a scroll of cols columns in dir.
func EncodeScroll(dir Direction, cols int) (Command, error) {
	if cols < 0 || cols >= Cols {
		return nil, ErrColumn
	}
	op := byte(opScrollLeft)
	if dir == Right {
		op = opScrollRight
	}
	return command(op, digit(uint8(cols/10)), digit(uint8(cols%10))), nil
}

// EncodeSaveCursor encodes save cursor position.
func EncodeSaveCursor() Command {
	return command(opCursorSave, '0')
}

// EncodeRestoreCursor encodes restore the saved cursor position.
func EncodeRestoreCursor() Command {
	return command(opCursorRestore, '0')
}

// EncodeWrapMode encodes the line wrap mode.
func EncodeWrapMode(m WrapMode) (Command, error) {
	if m > Wrap40 {
		return nil, ErrDisplayMode
	}
	return command(opWrapMode, digit(uint8(m))), nil
}

// EncodeEraseInLine encodes an erase within the current line.
func EncodeEraseInLine(m EraseMode) (Command, error) {
	if m > EraseLine {
		return nil, ErrEraseMode
	}
	return command(opEraseInLine, digit(uint8(m))), nil
}

// EncodeEraseChars encodes erasing n characters from the cursor. n is sent
// in decimal and must fit on one line.
func EncodeEraseChars(n int) (Command, error) {
	if n < 0 || n > Cols {
		return nil, ErrColumn
	}
	return command(opEraseChars, strconv.AppendInt(nil, int64(n), 10)...), nil
}

// EncodeReset encodes a device reset.
func EncodeReset() Command {
	return command(opReset, '0')
}

// EncodeSaveI2CAddress encodes saving the 7-bit I2C address to EEPROM. The
// address is sent in decimal.
func EncodeSaveI2CAddress(addr uint16) (Command, error) {
	if addr > 0x7F {
		return nil, ErrAddress
	}
	return command(opSaveI2CAddr, strconv.AppendUint(nil, uint64(addr), 10)...), nil
}

// EncodeSaveBaudRate encodes saving the UART baud rate to EEPROM.
func EncodeSaveBaudRate(b BaudRate) (Command, error) {
	if b > Baud115200 {
		return nil, ErrBaudRate
	}
	return command(opSaveBaud, digit(uint8(b))), nil
}

func tableCommand(op byte, table int) (Command, error) {
	if table < 0 || table > 3 {
		return nil, ErrTable
	}
	return command(op, digit(uint8(table))), nil
}

// EncodeProgramCharTable encodes programming the active character set from
// table.
func EncodeProgramCharTable(table int) (Command, error) {
	return tableCommand(opProgramTable, table)
}

// EncodeSaveCharTable encodes saving RAM character table to EEPROM.
func EncodeSaveCharTable(table int) (Command, error) {
	return tableCommand(opSaveTable, table)
}

// EncodeLoadCharTable encodes loading EEPROM character table into RAM.
func EncodeLoadCharTable(table int) (Command, error) {
	return tableCommand(opLoadTable, table)
}

// EncodeSaveCommMode encodes saving the communication mode to EEPROM.
func EncodeSaveCommMode(m CommMode) (Command, error) {
	if m > CommJumpers {
		return nil, ErrCommMode
	}
	return command(opSaveCommMode, digit(uint8(m))), nil
}

// EncodeEnableEEPROMWrite encodes the EEPROM write enable. The display
// ignores the EEPROM save commands until it has received this one.
func EncodeEnableEEPROMWrite() Command {
	return command(opEEPROMWrEnable, '0')
}

// EncodeSaveCursorMode encodes saving the cursor mode to EEPROM.
func EncodeSaveCursorMode(m CursorMode) (Command, error) {
	if m > CursorBlink {
		return nil, ErrCursorMode
	}
	return command(opSaveCursorMode, digit(uint8(m))), nil
}

// EncodeSaveDisplayMode encodes saving the display mode to EEPROM.
func EncodeSaveDisplayMode(m DisplayMode) (Command, error) {
	if m > DisplayOnBacklightOn {
		return nil, ErrDisplayMode
	}
	return command(opSaveDispMode, digit(uint8(m))), nil
}

// EncodeDefineGlyph encodes defining g at character position pos (0-7),
// immediately followed by programming the character set from table 3 so the
// glyph can be displayed right away.
//
// Each row is sent as "0xHH;", upper case hex.
func EncodeDefineGlyph(g glyph.Glyph, pos int) (Command, error) {
	if pos < 0 || pos >= glyph.Positions {
		return nil, ErrGlyphPosition
	}
	c := make(Command, 0, 2+len(g)*5+2+4+1)
	c = append(c, esc, bracket)
	for _, row := range g {
		c = fmt.Appendf(c, "0x%02X;", row)
	}
	c = append(c, digit(uint8(pos)), opDefineChar)
	return append(c, command(opProgramTable, digit(glyphTable))...), nil
}
