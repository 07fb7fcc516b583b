package session

import (
	"sync"

	"github.com/kestrelnet/cdpsession/pkg/wire"
	"github.com/pion/logging"
)

// registryStartID is the first local session id the registry hands
// out; zero is reserved as the wire sentinel for "no session yet".
const registryStartID uint32 = 0xE

// Config supplies the collaborators a freshly created session needs.
type Config struct {
	Platform            Platform
	Apps                AppRegistry
	HmacSize            uint8
	MessageFragmentSize uint32

	// LoggerFactory builds the per-session leveled logger. Logging is
	// disabled when nil.
	LoggerFactory logging.LoggerFactory
}

// Registry is the process-wide mapping of LocalSessionId to Session
// that every inbound frame resolves its session through (spec §4.G).
type Registry struct {
	sessions sync.Map // uint32 -> *Session

	allocMu sync.Mutex
	nextID  uint32
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{nextID: registryStartID}
}

func (r *Registry) allocateID() uint32 {
	r.allocMu.Lock()
	defer r.allocMu.Unlock()

	for {
		id := r.nextID
		r.nextID++
		if r.nextID == 0 {
			r.nextID = 1
		}
		if id == 0 {
			continue
		}
		if _, exists := r.sessions.Load(id); !exists {
			return id
		}
	}
}

// GetOrCreate resolves the session a frame belongs to. A frame whose
// encoded peer-local id is zero is peer-originated and allocates a
// new session; otherwise the frame must name an existing, matching,
// non-disposed session.
func (r *Registry) GetOrCreate(header *wire.CommonHeader, cfg Config) (*Session, error) {
	senderLocal, _, peerLocal := wire.DecomposeSessionID(header.SessionID)

	if peerLocal == 0 {
		localID := r.allocateID()
		sess := newSession(localID, senderLocal, cfg)
		sess.removeSelf = func() { r.sessions.Delete(localID) }
		r.sessions.Store(localID, sess)
		return sess, nil
	}

	v, ok := r.sessions.Load(peerLocal)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess := v.(*Session)
	if sess.RemoteSessionID() != senderLocal {
		return nil, ErrSessionMismatch
	}
	if sess.State() == StateDisposed {
		return nil, ErrSessionDisposed
	}
	return sess, nil
}

// Len reports the number of sessions currently registered, for tests
// and diagnostics.
func (r *Registry) Len() int {
	n := 0
	r.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
