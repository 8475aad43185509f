package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// ErrUnavailable covers device-not-found and connection failures. Callers
// distinguish it from mid-print errors but must treat both as non-fatal.
var ErrUnavailable = errors.New("printer unavailable")

type Device interface {
	Open(ctx context.Context) (io.WriteCloser, error)
}

// NetworkDevice is a raw-socket ESC/POS printer, the usual 9100/tcp setup.
type NetworkDevice struct {
	addr    string
	timeout time.Duration
}

func NewNetworkDevice(addr string, timeout time.Duration) *NetworkDevice {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NetworkDevice{addr: addr, timeout: timeout}
}

func (d *NetworkDevice) Open(ctx context.Context) (io.WriteCloser, error) {
	if d.addr == "" {
		return nil, fmt.Errorf("%w: no printer address configured", ErrUnavailable)
	}
	dialer := net.Dialer{Timeout: d.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return conn, nil
}

type Printer struct {
	device Device
}

func New(device Device) *Printer {
	return &Printer{device: device}
}

// Print renders the receipt, frames it as ESC/POS, and writes it to the
// device. Any error is returned to the caller for reporting; the caller is
// expected to continue regardless.
func (p *Printer) Print(ctx context.Context, r Receipt) error {
	if p == nil || p.device == nil {
		return fmt.Errorf("%w: no device configured", ErrUnavailable)
	}

	w, err := p.device.Open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if _, err := w.Write(Encode(r.Render())); err != nil {
		return fmt.Errorf("print failed: %w", err)
	}
	return nil
}

// ESC/POS framing: initialize, payload, feed, partial cut.
func Encode(text string) []byte {
	frame := make([]byte, 0, len(text)+8)
	frame = append(frame, 0x1b, 0x40)
	frame = append(frame, []byte(text)...)
	frame = append(frame, '\n', '\n', '\n')
	frame = append(frame, 0x1d, 0x56, 0x41, 0x10)
	return frame
}
