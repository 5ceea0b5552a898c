package dispatcher

import "github.com/puzpuzpuz/xsync/v3"

// busyGuard admits one in-flight call per session.
type busyGuard struct {
	inflight *xsync.MapOf[string, struct{}]
}

func newBusyGuard() *busyGuard {
	return &busyGuard{inflight: xsync.NewMapOf[string, struct{}]()}
}

func (g *busyGuard) acquire(sessionID string) bool {
	_, loaded := g.inflight.LoadOrStore(sessionID, struct{}{})
	return !loaded
}

func (g *busyGuard) release(sessionID string) {
	g.inflight.Delete(sessionID)
}
