package wire

import (
	"errors"
	"io/fs"
	"net"
	"os"
	"time"
)

// ErrTimeout is returned when a health-check handshake exceeds its budget.
var ErrTimeout = errors.New("wire: deadline exceeded")

// ErrEndpointUnavailable is returned when a peer endpoint has no bound
// listener to receive a Dial.
var ErrEndpointUnavailable = errors.New("wire: endpoint unavailable")

// HandshakeTimeout bounds a health-check round trip (QH_TEST / FD_TEST),
// per the concurrency model's fixed 1-second budget.
const HandshakeTimeout = time.Second

// Endpoint is a Unix domain datagram socket, either bound as a mailbox
// (Listen) or connected to one (Dial). The bridge process and the
// operator CLI each bind their own mailbox first; the daemon dials it
// to deliver replies, mirroring the three independently addressable
// message queues of the original transport.
type Endpoint struct {
	path     string
	conn     *net.UnixConn
	listener bool
}

// Listen binds an Endpoint at path as a mailbox, removing any stale
// socket file left behind by a previous run.
func Listen(path string) (*Endpoint, error) {
	_ = os.Remove(path)
	addr, err := net.ResolveUnixAddr("unixgram", path)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return nil, err
	}
	_ = os.Chmod(path, 0o660)
	return &Endpoint{path: path, conn: conn, listener: true}, nil
}

// Dial connects to an Endpoint already bound at path.
func Dial(path string) (*Endpoint, error) {
	raddr, err := net.ResolveUnixAddr("unixgram", path)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUnix("unixgram", nil, raddr)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrEndpointUnavailable
		}
		return nil, err
	}
	return &Endpoint{path: path, conn: conn, listener: false}, nil
}

// Send writes one frame to the peer this endpoint is connected or bound
// to send toward.
func (e *Endpoint) Send(payload []byte, final bool) error {
	buf, err := Encode(payload, final)
	if err != nil {
		return err
	}
	_, err = e.conn.Write(buf[:])
	return err
}

// SendWithDeadline is Send bounded by HandshakeTimeout.
func (e *Endpoint) SendWithDeadline(payload []byte, final bool) error {
	if err := e.conn.SetWriteDeadline(time.Now().Add(HandshakeTimeout)); err != nil {
		return err
	}
	defer e.conn.SetWriteDeadline(time.Time{})
	if err := e.Send(payload, final); err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return ErrTimeout
		}
		return err
	}
	return nil
}

// Receive blocks for the next frame addressed to this endpoint.
func (e *Endpoint) Receive() (Frame, error) {
	buf := make([]byte, FrameSize)
	n, err := e.conn.Read(buf)
	if err != nil {
		return Frame{}, err
	}
	return Decode(buf[:n]), nil
}

// ReceiveWithDeadline blocks for the next frame, failing with ErrTimeout
// if none arrives within HandshakeTimeout.
func (e *Endpoint) ReceiveWithDeadline() (Frame, error) {
	if err := e.conn.SetReadDeadline(time.Now().Add(HandshakeTimeout)); err != nil {
		return Frame{}, err
	}
	defer e.conn.SetReadDeadline(time.Time{})
	frame, err := e.Receive()
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return Frame{}, ErrTimeout
		}
		return Frame{}, err
	}
	return frame, nil
}

// ReceiveAll reads frames until one with Final set arrives, returning the
// payloads as a list in the order received. Used by readers of multi-part
// replies (directory listings, search results, tag lists).
func (e *Endpoint) ReceiveAll() ([][]byte, error) {
	var parts [][]byte
	for {
		frame, err := e.Receive()
		if err != nil {
			return nil, err
		}
		parts = append(parts, frame.Payload)
		if frame.Final {
			return parts, nil
		}
	}
}

// Close releases the endpoint. Only a bound mailbox unlinks its backing
// socket file; a dialed connection leaves the peer's mailbox in place.
func (e *Endpoint) Close() error {
	err := e.conn.Close()
	if e.listener && e.path != "" {
		_ = os.Remove(e.path)
	}
	return err
}

// Path returns the filesystem path this endpoint is bound or connected to.
func (e *Endpoint) Path() string {
	return e.path
}
