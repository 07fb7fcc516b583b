package transport

import (
	"io"
	"net"
	"sync"

	"github.com/kestrelnet/cdpsession/pkg/wire"
	"github.com/pion/logging"
)

// FrameHandler processes one frame read off a connection. headerBytes
// is the exact encoded header, handed back so callers can reuse it as
// HMAC AAD; body yields exactly header.PayloadSize bytes, and whatever
// the handler leaves unread is discarded before the next frame is read.
type FrameHandler func(conn net.Conn, headerBytes []byte, header *wire.CommonHeader, body io.Reader) error

// TCP serves the transport-upgrade endpoint a session offers in its
// UpgradeResponse: a plain net.Listener carrying CDP frames with no
// outer length prefix, since CommonHeader.PayloadSize already
// delimits each frame (spec §4.F, §6).
type TCP struct {
	listener net.Listener
	handler  FrameHandler
	log      logging.LeveledLogger

	closeCh chan struct{}
	wg      sync.WaitGroup

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}

	mu      sync.Mutex
	started bool
	closed  bool
}

// TCPConfig configures the TCP transport.
type TCPConfig struct {
	// Listener is an optional pre-existing listener to use. If nil, a
	// new listener is created using ListenAddr.
	Listener net.Listener

	// ListenAddr is the address to listen on (e.g. ":5040"). Ignored
	// if Listener is provided.
	ListenAddr string

	// FrameHandler is called for each frame read off any connection.
	// Required.
	FrameHandler FrameHandler

	// LoggerFactory builds the transport's logger. Logging is disabled
	// when nil.
	LoggerFactory logging.LoggerFactory
}

// NewTCP creates a new TCP transport with the given configuration.
func NewTCP(config TCPConfig) (*TCP, error) {
	if config.FrameHandler == nil {
		return nil, ErrNoHandler
	}

	t := &TCP{
		listener: config.Listener,
		handler:  config.FrameHandler,
		closeCh:  make(chan struct{}),
		conns:    make(map[net.Conn]struct{}),
	}

	if config.LoggerFactory != nil {
		t.log = config.LoggerFactory.NewLogger("transport-tcp")
	}

	if t.listener == nil {
		addr := config.ListenAddr
		if addr == "" {
			addr = ":0"
		}
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		t.listener = listener
	}

	return t, nil
}

// Start begins accepting connections and dispatching their frames.
func (t *TCP) Start() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if t.started {
		t.mu.Unlock()
		return ErrAlreadyStarted
	}
	t.started = true
	t.mu.Unlock()

	if t.log != nil {
		t.log.Infof("starting TCP transport on %s", t.listener.Addr())
	}

	t.wg.Add(1)
	go t.acceptLoop()
	return nil
}

// Stop closes the listener and every tracked connection.
func (t *TCP) Stop() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.closed = true
	t.mu.Unlock()

	if t.log != nil {
		t.log.Info("stopping TCP transport")
	}

	close(t.closeCh)
	t.listener.Close()

	t.connsMu.Lock()
	for c := range t.conns {
		c.Close()
	}
	t.conns = make(map[net.Conn]struct{})
	t.connsMu.Unlock()

	t.wg.Wait()
	return nil
}

// LocalAddr returns the address the transport is listening on.
func (t *TCP) LocalAddr() net.Addr {
	return t.listener.Addr()
}

func (t *TCP) acceptLoop() {
	defer t.wg.Done()

	for {
		conn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.closeCh:
				return
			default:
				if t.log != nil {
					t.log.Warnf("accept error: %v", err)
				}
				return
			}
		}

		t.connsMu.Lock()
		t.conns[conn] = struct{}{}
		t.connsMu.Unlock()

		t.wg.Add(1)
		go t.readLoop(conn)
	}
}

// readLoop reads frames off conn until it closes or a header fails to
// decode. conn is handed to FrameHandler directly: a session writes
// its replies straight back to it as a Socket.
func (t *TCP) readLoop(conn net.Conn) {
	defer t.wg.Done()
	defer conn.Close()
	defer func() {
		t.connsMu.Lock()
		delete(t.conns, conn)
		t.connsMu.Unlock()
	}()

	for {
		header, headerBytes, err := wire.ReadHeader(conn)
		if err != nil {
			if t.log != nil && err != io.EOF {
				t.log.Debugf("connection %s closed: %v", conn.RemoteAddr(), err)
			}
			return
		}

		body := io.LimitReader(conn, int64(header.PayloadSize))
		if err := t.handler(conn, headerBytes, header, body); err != nil && t.log != nil {
			t.log.Warnf("frame handler error from %s: %v", conn.RemoteAddr(), err)
		}
		io.Copy(io.Discard, body)
	}
}
