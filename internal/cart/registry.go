package cart

import "sync"

// Registry owns one mirror per user session. It is created at application
// start and injected into the HTTP layer; nothing here is a package-level
// global.
type Registry struct {
	remote RemoteCart

	mu      sync.Mutex
	mirrors map[string]*Mirror
}

func NewRegistry(remote RemoteCart) *Registry {
	return &Registry{
		remote:  remote,
		mirrors: make(map[string]*Mirror),
	}
}

// Mirror returns the user's mirror, creating it on first use.
func (r *Registry) Mirror(userID string) *Mirror {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.mirrors[userID]
	if !ok {
		m = NewMirror(r.remote, userID)
		r.mirrors[userID] = m
	}
	return m
}
