package link

import (
	"errors"
	"net"
	"sync"
	"time"
)

// Transport is the duplex byte stream to the modem. Read returns within the
// implementation's read timeout so the reader loop can notice it has been
// superseded; a timeout surfaces as an error satisfying IsTimeout.
type Transport interface {
	Read(p []byte) (int, error)
	WriteAll(p []byte) error
	Close() error
}

// IsTimeout reports whether err is a transient read/write timeout rather
// than a dead link.
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// ConnTransport adapts a net.Conn (TCP to a modem bridge, or a serial-port
// shim exposing net.Conn) with a fixed per-call read deadline.
type ConnTransport struct {
	conn         net.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConnTransport wraps conn. Zero timeouts fall back to sane defaults.
func NewConnTransport(conn net.Conn, readTimeout, writeTimeout time.Duration) *ConnTransport {
	if readTimeout <= 0 {
		readTimeout = 100 * time.Millisecond
	}
	if writeTimeout <= 0 {
		writeTimeout = time.Second
	}
	return &ConnTransport{conn: conn, readTimeout: readTimeout, writeTimeout: writeTimeout}
}

func (t *ConnTransport) Read(p []byte) (int, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.readTimeout)); err != nil {
		return 0, err
	}
	return t.conn.Read(p)
}

// WriteAll writes the whole buffer or fails.
func (t *ConnTransport) WriteAll(p []byte) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
		return err
	}
	for len(p) > 0 {
		n, err := t.conn.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

func (t *ConnTransport) Close() error {
	return t.conn.Close()
}

// ErrHandleClosed reports an operation on a handle whose transport has been
// released.
var ErrHandleClosed = errors.New("transport handle closed")

// Handle is the single owned access point to a transport. Reads and writes
// serialize on an internal mutex so they never interleave mid-frame on the
// half-duplex link, and neither side can hold the exclusion across a logical
// operation boundary.
type Handle struct {
	mu     sync.Mutex
	t      Transport
	closed bool
}

// NewHandle takes ownership of t.
func NewHandle(t Transport) *Handle {
	return &Handle{t: t}
}

func (h *Handle) Read(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, ErrHandleClosed
	}
	return h.t.Read(p)
}

func (h *Handle) WriteAll(p []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHandleClosed
	}
	return h.t.WriteAll(p)
}

// Close releases the underlying transport. Further reads and writes fail with
// ErrHandleClosed.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.t.Close()
}
