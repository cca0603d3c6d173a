package fdw

import (
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/wrapgate/postgres-fdw/host"
	"github.com/wrapgate/postgres-fdw/types"
)

// sessionState is the per-session state kept across the callback sequence
// of one scan or one modification statement: the capability value, the
// resolved options, and the lazily created row producer (nil until the
// first row request).
type sessionState[T ForeignData] struct {
	id    string
	opts  *types.Options
	state T
	rows  RowIterator
	span  trace.Span
}

// sessionToken is the only value written into the host's opaque state slot.
// The slot format stays ignorant of the wrapper's generic state types; the
// token resolves through the wrapper's registry.
type sessionToken uint64

// sessionRegistry maps tokens to live sessions. Each wrapper owns one; a
// session is registered at Begin and dropped at End. Host backends may run
// sessions concurrently, hence the lock.
type sessionRegistry[T ForeignData] struct {
	mu   sync.RWMutex
	next sessionToken
	sess map[sessionToken]*sessionState[T]
}

func newSessionRegistry[T ForeignData]() *sessionRegistry[T] {
	return &sessionRegistry[T]{sess: make(map[sessionToken]*sessionState[T])}
}

func (r *sessionRegistry[T]) save(s *sessionState[T]) sessionToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	tok := r.next
	r.sess[tok] = s
	return tok
}

func (r *sessionRegistry[T]) get(tok sessionToken) *sessionState[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sess[tok]
}

func (r *sessionRegistry[T]) clear(tok sessionToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sess, tok)
}

// session resolves the state slot of an executing node back to its session.
// A missing or foreign value is a protocol sequence breach: Begin was never
// called on this node.
func (w *Wrapper[T]) session(slot host.StateSlot) (sessionToken, *sessionState[T], error) {
	tok, ok := slot.Get().(sessionToken)
	if !ok {
		return 0, nil, Errorf(ErrcodeFdwFunctionSequenceError, "no session state on node: Begin was not invoked")
	}
	s := w.sessions.get(tok)
	if s == nil {
		return 0, nil, Errorf(ErrcodeFdwFunctionSequenceError, "session %d already ended", tok)
	}
	return tok, s, nil
}

// release drops a session from the registry, closing its row producer if
// one was created. The host owns and frees the node state itself.
func (w *Wrapper[T]) release(tok sessionToken, s *sessionState[T]) {
	if s.rows != nil {
		s.rows.Close()
		s.rows = nil
	}
	if s.span != nil {
		s.span.End()
	}
	w.sessions.clear(tok)
}
