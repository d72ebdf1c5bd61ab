package pmodcls

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// TransportKind identifies the bus a Dev talks over. It is fixed when the
// Dev is created.
type TransportKind uint8

const (
	SPI   TransportKind = iota // SPI with an optional explicit select line
	UART1                      // primary UART
	UART2                      // secondary UART
	I2C                        // I2C (TWI)
)

func (k TransportKind) String() string {
	switch k {
	case SPI:
		return "SPI"
	case UART1:
		return "UART1"
	case UART2:
		return "UART2"
	case I2C:
		return "I2C"
	default:
		return fmt.Sprintf("TransportKind(%d)", uint8(k))
	}
}

// MaxI2CPayload is the largest payload written in one I2C transaction. The
// device side buffers 32 bytes per transaction, two of which are framing.
const MaxI2CPayload = 30

// DefaultI2CAddr is the factory I2C address of the display.
const DefaultI2CAddr uint16 = 0x48

// Sink delivers raw bytes to the display, in order, as one logical unit.
type Sink interface {
	Send(p []byte) error
	String() string
}

// spiSink writes through a SPI connection. When cs is set, the select line is
// driven by the sink around the whole payload so it can be split into several
// transfers without releasing the device.
type spiSink struct {
	c  conn.Conn
	cs gpio.PinOut
}

func (s *spiSink) Send(p []byte) error {
	if s == nil || s.c == nil {
		return ErrNoSink
	}
	if s.cs == nil {
		return s.c.Tx(p, nil)
	}
	if err := s.cs.Out(gpio.Low); err != nil {
		return fmt.Errorf("assert select line: %w", err)
	}
	err := s.tx(p)
	if e := s.cs.Out(gpio.High); e != nil && err == nil {
		err = fmt.Errorf("release select line: %w", e)
	}
	return err
}

// tx splits p to the connection's maximum transfer size, if it reports one.
func (s *spiSink) tx(p []byte) error {
	max := 0
	if l, ok := s.c.(conn.Limits); ok {
		max = l.MaxTxSize()
	}
	if max <= 0 {
		return s.c.Tx(p, nil)
	}
	for _, chunk := range fragment(p, max) {
		if err := s.c.Tx(chunk, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *spiSink) String() string {
	if s.cs != nil {
		return fmt.Sprintf("spi{%s, cs=%s}", s.c, s.cs)
	}
	return fmt.Sprintf("spi{%s}", s.c)
}

// uartSink writes to a serial port. The port is expected to deliver bytes in
// order without loss; no flow control is applied here.
type uartSink struct {
	w io.Writer
}

func (s *uartSink) Send(p []byte) error {
	if s == nil || s.w == nil {
		return ErrNoSink
	}
	for len(p) > 0 {
		n, err := s.w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	if d, ok := s.w.(interface{ Drain() error }); ok {
		return d.Drain()
	}
	return nil
}

func (s *uartSink) String() string {
	if st, ok := s.w.(fmt.Stringer); ok {
		return "uart{" + st.String() + "}"
	}
	return "uart"
}

func (s *uartSink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// i2cSink writes to a device on an I2C bus, one transaction per fragment of at
// most MaxI2CPayload bytes.
type i2cSink struct {
	d *i2c.Dev
}

func (s *i2cSink) Send(p []byte) error {
	if s == nil || s.d == nil || s.d.Bus == nil {
		return ErrNoSink
	}
	for i, chunk := range fragment(p, MaxI2CPayload) {
		if err := s.d.Tx(chunk, nil); err != nil {
			return fmt.Errorf("fragment %d: %w", i, err)
		}
	}
	return nil
}

func (s *i2cSink) String() string {
	return fmt.Sprintf("i2c{%s, 0x%02X}", s.d.Bus, s.d.Addr)
}

// fragment splits p into consecutive slices of at most max bytes. An empty
// payload yields no fragments.
func fragment(p []byte, max int) [][]byte {
	if len(p) == 0 {
		return nil
	}
	chunks := make([][]byte, 0, (len(p)+max-1)/max)
	for len(p) > max {
		chunks = append(chunks, p[:max])
		p = p[max:]
	}
	return append(chunks, p)
}
