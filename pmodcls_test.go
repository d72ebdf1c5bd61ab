package pmodcls

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/flavioheleno/pmodcls/glyph"
)

// recordSink keeps every payload it is given.
type recordSink struct {
	mu    sync.Mutex
	sends [][]byte
	err   error
}

func (r *recordSink) Send(p []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sends = append(r.sends, append([]byte(nil), p...))
	return nil
}

func (r *recordSink) String() string { return "record" }

func (r *recordSink) all() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.sends...)
}

func newRecordDev(t *testing.T) (*Dev, *recordSink) {
	t.Helper()
	s := &recordSink{}
	d, err := New(SPI, s, nil)
	require.NoError(t, err)
	return d, s
}

func TestNewNilSink(t *testing.T) {
	d, err := New(I2C, nil, nil)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrNoSink)
}

func TestNewInit(t *testing.T) {
	s := &recordSink{}
	d, err := New(UART1, s, &Opts{Init: true})
	require.NoError(t, err)
	assert.Equal(t, UART1, d.Transport())
	assert.Equal(t, [][]byte{
		EncodeDisplay(true, true).Payload(),
		EncodeClear().Payload(),
	}, s.all())
}

func TestNewInitFailure(t *testing.T) {
	s := &recordSink{err: errors.New("unplugged")}
	d, err := New(UART2, s, &Opts{Init: true})
	assert.Nil(t, d)
	var ce *CommError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "display", ce.Op)
}

func TestNewSPI(t *testing.T) {
	port := &spitest.Record{}
	d, err := NewSPI(port, nil)
	require.NoError(t, err)
	assert.Equal(t, SPI, d.Transport())

	require.NoError(t, d.Clear())
	require.Len(t, port.Ops, 1)
	assert.Equal(t, []byte{0x1B, 0x5B, '0', 0x6A}, port.Ops[0].W)
	assert.Equal(t, "pmodcls.Dev{spi{record}}", d.String())
}

func TestNewSPIWithSelectLine(t *testing.T) {
	cs := &gpiotest.Pin{N: "CS", L: gpio.Low}
	d, err := NewSPI(&spitest.Record{}, &Opts{CS: cs})
	require.NoError(t, err)
	assert.Equal(t, gpio.High, cs.Read())

	require.NoError(t, d.SetDisplay(true, true))
	assert.Equal(t, gpio.High, cs.Read())
}

func TestNewI2C(t *testing.T) {
	tests := []struct {
		name string
		opts *Opts
		addr uint16
	}{
		{"nil options", nil, DefaultI2CAddr},
		{"zero address", &Opts{}, DefaultI2CAddr},
		{"custom address", &Opts{Addr: 0x3C}, 0x3C},
		{"highest address", &Opts{Addr: 0x7F}, 0x7F},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &i2ctest.Record{}
			d, err := NewI2C(bus, tt.opts)
			require.NoError(t, err)
			require.NoError(t, d.Reset())
			require.Len(t, bus.Ops, 1)
			assert.Equal(t, tt.addr, bus.Ops[0].Addr)
			assert.Equal(t, []byte{0x1B, 0x5B, '0', 0x2A}, bus.Ops[0].W)
		})
	}

	_, err := NewI2C(&i2ctest.Record{}, &Opts{Addr: 0x80})
	assert.Error(t, err)
}

func TestNewI2CFragmentsGlyph(t *testing.T) {
	bus := &i2ctest.Record{}
	d, err := NewI2C(bus, nil)
	require.NoError(t, err)

	require.NoError(t, d.DefineGlyph(glyph.Glyph{0x1F, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x1F}, 2))
	require.Len(t, bus.Ops, 2)
	assert.Len(t, bus.Ops[0].W, 30)
	assert.Len(t, bus.Ops[1].W, 18)
}

func TestNewUART(t *testing.T) {
	var buf bytes.Buffer
	d, err := NewUART(&buf, UART2, nil)
	require.NoError(t, err)
	assert.Equal(t, UART2, d.Transport())

	require.NoError(t, d.WriteStringAt(0, 0, "hi"))
	assert.Equal(t, []byte{0x1B, 0x5B, '0', ';', '0', '0', 0x48, 'h', 'i'}, buf.Bytes())

	for _, kind := range []TransportKind{SPI, I2C} {
		d, err := NewUART(&buf, kind, nil)
		assert.Nil(t, d)
		assert.ErrorIs(t, err, ErrTransportMismatch)
	}
}

func TestWriteStringAt(t *testing.T) {
	tests := []struct {
		name string
		row  int
		col  int
		text string
		want string
	}{
		{"fits", 0, 0, "Hello", "Hello"},
		{"ends at last column", 1, 35, "World", "World"},
		{"truncated", 2, 38, "ABCDE", "AB"},
		{"last column", 0, 39, "xyz", "x"},
		{"long line", 0, 0, strings.Repeat("a", 50), strings.Repeat("a", 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, s := newRecordDev(t)
			require.NoError(t, d.WriteStringAt(tt.row, tt.col, tt.text))

			pos, err := EncodePosition(tt.row, tt.col)
			require.NoError(t, err)
			assert.Equal(t, [][]byte{pos.Payload(), []byte(tt.want)}, s.all())
		})
	}
}

func TestWriteStringAtEmpty(t *testing.T) {
	d, s := newRecordDev(t)
	require.NoError(t, d.WriteStringAt(1, 4, ""))
	sends := s.all()
	require.Len(t, sends, 1)
	assert.Equal(t, []byte{0x1B, 0x5B, '1', ';', '0', '4', 0x48}, sends[0])
}

func TestInvalidArgumentsSendNothing(t *testing.T) {
	d, s := newRecordDev(t)

	tests := []struct {
		name string
		call func() error
		code ErrorCode
	}{
		{"position", func() error { return d.SetPosition(3, 40) }, ErrRow | ErrColumn},
		{"write string", func() error { return d.WriteStringAt(0, 40, "x") }, ErrColumn},
		{"write glyphs row", func() error { return d.WriteGlyphsAt(7, 0, 1) }, ErrRow},
		{"write glyphs position", func() error { return d.WriteGlyphsAt(0, 0, 1, 8) }, ErrGlyphPosition},
		{"write glyphs both", func() error { return d.WriteGlyphsAt(0, 41, 9) }, ErrColumn | ErrGlyphPosition},
		{"scroll", func() error { return d.Scroll(Left, 40) }, ErrColumn},
		{"wrap mode", func() error { return d.SetWrapMode(2) }, ErrDisplayMode},
		{"erase in line", func() error { return d.EraseInLine(3) }, ErrEraseMode},
		{"erase chars", func() error { return d.EraseChars(41) }, ErrColumn},
		{"i2c address", func() error { return d.SaveI2CAddress(0x100) }, ErrAddress},
		{"baud rate", func() error { return d.SaveBaudRate(7) }, ErrBaudRate},
		{"program table", func() error { return d.ProgramCharTable(4) }, ErrTable},
		{"save table", func() error { return d.SaveCharTable(-1) }, ErrTable},
		{"load table", func() error { return d.LoadCharTable(9) }, ErrTable},
		{"comm mode", func() error { return d.SaveCommMode(8) }, ErrCommMode},
		{"cursor mode", func() error { return d.SaveCursorMode(3) }, ErrCursorMode},
		{"display mode", func() error { return d.SaveDisplayMode(4) }, ErrDisplayMode},
		{"define glyph", func() error { return d.DefineGlyph(glyph.Glyph{}, 8) }, ErrGlyphPosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.Equal(t, tt.code, Code(err))
		})
	}
	assert.Empty(t, s.all())
}

func TestOperationsSendEncoding(t *testing.T) {
	d, s := newRecordDev(t)

	require.NoError(t, d.SetDisplay(true, false))
	require.NoError(t, d.SetCursorMode(true, true))
	require.NoError(t, d.SetPosition(2, 15))
	require.NoError(t, d.Scroll(Right, 3))
	require.NoError(t, d.SaveCursor())
	require.NoError(t, d.RestoreCursor())
	require.NoError(t, d.SetWrapMode(Wrap40))
	require.NoError(t, d.EraseInLine(EraseLine))
	require.NoError(t, d.EraseChars(12))
	require.NoError(t, d.EnableEEPROMWrite())
	require.NoError(t, d.SaveI2CAddress(0x2A))
	require.NoError(t, d.SaveBaudRate(Baud19200))
	require.NoError(t, d.ProgramCharTable(1))
	require.NoError(t, d.SaveCharTable(2))
	require.NoError(t, d.LoadCharTable(3))
	require.NoError(t, d.SaveCommMode(CommSPI))
	require.NoError(t, d.SaveCursorMode(CursorBlink))
	require.NoError(t, d.SaveDisplayMode(DisplayOnBacklightOn))

	p := func(opcode byte, params ...byte) []byte {
		return want(opcode, params...).Payload()
	}
	assert.Equal(t, [][]byte{
		p(0x65, '1'),
		p(0x63, '2'),
		p(0x48, '2', ';', '1', '5'),
		p(0x41, '0', '3'),
		p(0x73, '0'),
		p(0x75, '0'),
		p(0x68, '1'),
		p(0x4B, '2'),
		p(0x4E, '1', '2'),
		p(0x77, '0'),
		p(0x61, '4', '2'),
		p(0x62, '3'),
		p(0x70, '1'),
		p(0x74, '2'),
		p(0x6C, '3'),
		p(0x6D, '6'),
		p(0x6E, '2'),
		p(0x6F, '3'),
	}, s.all())
}

func TestWriteGlyphsAt(t *testing.T) {
	d, s := newRecordDev(t)

	require.NoError(t, d.WriteGlyphsAt(1, 37, 0, 1, 2, 3, 4))
	sends := s.all()
	require.Len(t, sends, 2)
	pos, _ := EncodePosition(1, 37)
	assert.Equal(t, pos.Payload(), sends[0])
	assert.Equal(t, []byte{0, 1, 2}, sends[1])
}

func TestDefineGlyphSingleSend(t *testing.T) {
	d, s := newRecordDev(t)
	g := glyph.MustParse("#...#", ".#.#.", "..#..")

	require.NoError(t, d.DefineGlyph(g, 5))
	sends := s.all()
	require.Len(t, sends, 1)
	c, err := EncodeDefineGlyph(g, 5)
	require.NoError(t, err)
	assert.Equal(t, c.Payload(), sends[0])
}

func TestCommErrorWrapping(t *testing.T) {
	cause := errors.New("bus fault")
	d, err := New(I2C, &recordSink{err: cause}, nil)
	require.NoError(t, err)

	err = d.Clear()
	var ce *CommError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "clear", ce.Op)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "pmodcls: clear: bus fault", err.Error())
	assert.Equal(t, ErrorCode(0), Code(err))
}

func TestHalt(t *testing.T) {
	d, s := newRecordDev(t)

	require.NoError(t, d.Halt())
	require.NoError(t, d.Halt())
	assert.Equal(t, [][]byte{EncodeDisplay(false, false).Payload()}, s.all())

	assert.ErrorIs(t, d.Clear(), ErrHalted)
	assert.ErrorIs(t, d.WriteStringAt(0, 0, "x"), ErrHalted)
	assert.Len(t, s.all(), 1)
}

type closingSink struct {
	recordSink
	closed bool
}

func (c *closingSink) Close() error {
	c.closed = true
	return nil
}

func TestClose(t *testing.T) {
	s := &closingSink{}
	d, err := New(UART1, s, nil)
	require.NoError(t, err)
	assert.Equal(t, "pmodcls.Dev{record}", d.String())

	require.NoError(t, d.Close())
	assert.True(t, s.closed)
	assert.Equal(t, "pmodcls.Dev{UART1, closed}", d.String())
	assert.ErrorIs(t, d.Clear(), ErrNoSink)
	assert.NoError(t, d.Close())
	assert.Empty(t, s.all())
}

func TestConcurrentWritesDoNotInterleave(t *testing.T) {
	d, s := newRecordDev(t)

	const writers = 8
	const rounds = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(row, col int) {
			defer wg.Done()
			text := strings.Repeat(string(rune('a'+col)), 3)
			for j := 0; j < rounds; j++ {
				assert.NoError(t, d.WriteStringAt(row, col, text))
			}
		}(i%Rows, i)
	}
	wg.Wait()

	sends := s.all()
	require.Len(t, sends, 2*writers*rounds)
	for i := 0; i < len(sends); i += 2 {
		pos := sends[i]
		require.Len(t, pos, 7)
		require.Equal(t, byte(0x48), pos[6])
		col := int(pos[4]-'0')*10 + int(pos[5]-'0')
		assert.Equal(t, strings.Repeat(string(rune('a'+col)), 3), string(sends[i+1]))
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	s := &recordSink{}
	d, err := New(I2C, s, &Opts{Logger: &logger})
	require.NoError(t, err)

	require.NoError(t, d.Clear())
	out := buf.String()
	assert.Contains(t, out, `"transport":"I2C"`)
	assert.Contains(t, out, `"op":"clear"`)
	assert.Contains(t, out, `"payload":"1b5b306a"`)

	buf.Reset()
	assert.Error(t, d.SetPosition(9, 0))
	assert.Contains(t, buf.String(), `"message":"rejected"`)
}
