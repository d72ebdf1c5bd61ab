package pmodcls

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for failures that are not argument range violations.
var (
	ErrNoSink            = errors.New("pmodcls: no transport sink bound")
	ErrHalted            = errors.New("pmodcls: halted")
	ErrTransportMismatch = errors.New("pmodcls: transport kind does not match constructor")
)

// ErrorCode is a bitmask of argument range violations. Operations that check
// several arguments OR one bit per invalid argument into the same code, so a
// call with both row and column out of range reports ErrRow|ErrColumn.
//
// A zero ErrorCode means success; operations return it as a nil error.
type ErrorCode uint16

const (
	ErrRow           ErrorCode = 1 << iota // row not within [0, 2]
	ErrColumn                              // column not within [0, 39]
	ErrEraseMode                           // erase mode not within [0, 2]
	ErrBaudRate                            // baud rate index not within [0, 6]
	ErrTable                               // character table not within [0, 3]
	ErrCommMode                            // communication mode not within [0, 7]
	ErrCursorMode                          // cursor mode not within [0, 2]
	ErrDisplayMode                         // display mode not within [0, 3]
	ErrGlyphPosition                       // glyph position not within [0, 7]
	ErrAddress                             // I2C address not within [0, 127]
)

var errorCodeNames = []struct {
	bit  ErrorCode
	name string
}{
	{ErrRow, "row"},
	{ErrColumn, "column"},
	{ErrEraseMode, "erase mode"},
	{ErrBaudRate, "baud rate"},
	{ErrTable, "table"},
	{ErrCommMode, "communication mode"},
	{ErrCursorMode, "cursor mode"},
	{ErrDisplayMode, "display mode"},
	{ErrGlyphPosition, "glyph position"},
	{ErrAddress, "address"},
}

// Has reports whether every bit of flag is set in c.
func (c ErrorCode) Has(flag ErrorCode) bool {
	return flag != 0 && c&flag == flag
}

func (c ErrorCode) Error() string {
	var names []string
	for _, n := range errorCodeNames {
		if c.Has(n.bit) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("pmodcls: error code 0x%04X", uint16(c))
	}
	return "pmodcls: argument out of range: " + strings.Join(names, ", ")
}

// err converts c to an error, nil when no bit is set.
func (c ErrorCode) err() error {
	if c == 0 {
		return nil
	}
	return c
}

// CommError wraps a transport failure with the operation that caused it.
type CommError struct {
	Op  string // Operation that failed (e.g., "clear", "write string")
	Err error  // Underlying transport error
}

func (e *CommError) Error() string {
	return fmt.Sprintf("pmodcls: %s: %v", e.Op, e.Err)
}

func (e *CommError) Unwrap() error {
	return e.Err
}

// Code extracts the ErrorCode from err, or zero when err carries none.
func Code(err error) ErrorCode {
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	return 0
}
