package position

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// hdopMeters converts horizontal dilution of precision into an error estimate
// using a typical receiver range error.
const hdopMeters = 5.0

// NMEAReader turns a stream of NMEA 0183 sentences into fixes. Only GGA and
// RMC sentences with a valid fix are used; everything else is skipped.
type NMEAReader struct {
	scanner *bufio.Scanner
	now     func() time.Time
}

func NewNMEAReader(r io.Reader) *NMEAReader {
	return &NMEAReader{scanner: bufio.NewScanner(r), now: time.Now}
}

func (n *NMEAReader) Next(ctx context.Context) (Fix, error) {
	for n.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return Fix{}, err
		}
		line := strings.TrimSpace(n.scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}
		sentence, err := nmea.Parse(line)
		if err != nil {
			continue
		}
		if fix, ok := n.toFix(sentence); ok {
			return fix, nil
		}
	}
	if err := n.scanner.Err(); err != nil {
		return Fix{}, fmt.Errorf("read nmea: %w", err)
	}
	return Fix{}, ErrNoFix
}

func (n *NMEAReader) toFix(s nmea.Sentence) (Fix, bool) {
	switch v := s.(type) {
	case nmea.GGA:
		if v.FixQuality == nmea.Invalid {
			return Fix{}, false
		}
		return Fix{
			Latitude:  v.Latitude,
			Longitude: v.Longitude,
			Accuracy:  v.HDOP * hdopMeters,
			Time:      n.now(),
		}, true
	case nmea.RMC:
		if v.Validity != nmea.ValidRMC {
			return Fix{}, false
		}
		return Fix{
			Latitude:  v.Latitude,
			Longitude: v.Longitude,
			Time:      rmcTime(v, n.now),
		}, true
	}
	return Fix{}, false
}

func rmcTime(v nmea.RMC, now func() time.Time) time.Time {
	if !v.Date.Valid || !v.Time.Valid {
		return now()
	}
	year := 2000 + v.Date.YY
	if v.Date.YY >= 70 {
		year = 1900 + v.Date.YY
	}
	return time.Date(year, time.Month(v.Date.MM), v.Date.DD,
		v.Time.Hour, v.Time.Minute, v.Time.Second, v.Time.Millisecond*int(time.Millisecond), time.UTC)
}

// SerialProvider reads fixes from a GPS receiver on a serial port. The port is
// opened on first use and kept open until Close.
type SerialProvider struct {
	port     string
	baudRate int

	mu     sync.Mutex
	conn   io.ReadCloser
	reader *NMEAReader
}

func NewSerialProvider(port string, baudRate int) *SerialProvider {
	return &SerialProvider{port: port, baudRate: baudRate}
}

func (p *SerialProvider) Next(ctx context.Context) (Fix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reader == nil {
		conn, err := serial.OpenPort(&serial.Config{Name: p.port, Baud: p.baudRate, ReadTimeout: 5 * time.Second})
		if err != nil {
			return Fix{}, fmt.Errorf("open serial port %s: %w", p.port, err)
		}
		p.conn = conn
		p.reader = NewNMEAReader(conn)
	}

	fix, err := p.reader.Next(ctx)
	if err != nil {
		// the scanner cannot be resumed once it stops
		p.closeLocked()
	}
	return fix, err
}

func (p *SerialProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *SerialProvider) closeLocked() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	p.reader = nil
	return err
}
