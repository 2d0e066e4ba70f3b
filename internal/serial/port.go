package serial

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

const (
	DefaultPort        = "/dev/ttyACM0"
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 120 * time.Second
)

// ErrInvalidTimeout is returned by Open for a read timeout that would let a
// silent device block a read forever.
var ErrInvalidTimeout = errors.New("serial read timeout must be positive")

// Config holds the serial connection settings.
type Config struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration // Applies to each read, not to the session
}

// DefaultConfig returns the settings of the benchmark rig.
func DefaultConfig() Config {
	return Config{
		Port:        DefaultPort,
		BaudRate:    DefaultBaudRate,
		ReadTimeout: DefaultReadTimeout,
	}
}

// LineReader yields newline-terminated chunks of a byte stream.
type LineReader interface {
	// ReadLine returns the next chunk, including its trailing newline when
	// one arrived. An empty chunk with a nil error means no data arrived
	// before the read deadline or the stream ended.
	ReadLine() ([]byte, error)
}

// Stream is an open line-oriented connection.
type Stream interface {
	LineReader
	io.Closer
}

// Reader splits an underlying reader into lines. A read returning no bytes
// ends the current line early, so a stalled device surfaces as a partial
// chunk followed by an empty one.
type Reader struct {
	br *bufio.Reader
	// err is a read error that arrived together with data. It is reported
	// by the next ReadLine, after that data.
	err error
}

// NewReader wraps r. r may report a read timeout as (0, nil), the way
// go.bug.st/serial does.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(stallReader{r})}
}

// ReadLine implements LineReader.
func (r *Reader) ReadLine() ([]byte, error) {
	if err := r.err; err != nil {
		r.err = nil
		return nil, err
	}

	line, err := r.br.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		if len(line) > 0 {
			r.err = err
			return line, nil
		}
		return nil, err
	}
	return line, nil
}

// stallReader turns an empty read into io.EOF so bufio stops waiting.
type stallReader struct {
	r io.Reader
}

func (s stallReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, err
}

// Port is an open serial port read line by line.
type Port struct {
	*Reader
	port serial.Port
}

// Open opens the port with 8N1 framing and the configured read timeout.
func Open(cfg Config) (*Port, error) {
	if cfg.ReadTimeout <= 0 {
		return nil, fmt.Errorf("open %s: %w (got %s)", cfg.Port, ErrInvalidTimeout, cfg.ReadTimeout)
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Port, err)
	}

	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("could not set timeout on serial port %s: %w", cfg.Port, err)
	}

	return &Port{
		Reader: NewReader(port),
		port:   port,
	}, nil
}

// Close closes the serial port.
func (p *Port) Close() error {
	return p.port.Close()
}
