package pmodcls

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaud is the UART speed the display uses out of the box.
const DefaultBaud = 9600

// OpenUART opens a serial port for the display at baud, 8N1. A zero baud
// selects DefaultBaud.
//
// The returned port can be passed to NewUART; Dev.Close closes it.
func OpenUART(port string, baud int) (serial.Port, error) {
	if port == "" {
		return nil, errors.New("pmodcls: serial port path is required")
	}
	if baud == 0 {
		baud = DefaultBaud
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("pmodcls: failed to open serial port %s: %w", port, err)
	}
	return p, nil
}
