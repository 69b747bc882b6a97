package websocket

import "sync/atomic"

// HubRef points at the currently active Hub. The server swaps in a fresh hub
// after a panic without restarting HTTP; handlers and the race sink resolve
// the hub on every use.
type HubRef struct {
	p atomic.Pointer[Hub]
}

func NewHubRef(initial *Hub) *HubRef {
	r := &HubRef{}
	r.p.Store(initial)
	return r
}

func (r *HubRef) Get() (*Hub, bool) {
	h := r.p.Load()
	return h, h != nil
}

// Set installs h and returns the hub it replaced, if any.
func (r *HubRef) Set(h *Hub) *Hub {
	return r.p.Swap(h)
}

// Broadcast forwards to the active hub and reports whether one was set.
func (r *HubRef) Broadcast(room, typ string, payload any) bool {
	h, ok := r.Get()
	if !ok {
		return false
	}
	h.Broadcast(room, typ, payload)
	return true
}
