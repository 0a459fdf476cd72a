package server

import (
	"encoding/json"
	"sync"
)

// wsPeer serializes frame writes to one websocket connection.
type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(encoder *json.Encoder) *wsPeer {
	return &wsPeer{encoder: encoder}
}

func (p *wsPeer) writeFrame(frame wsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// hub is the broadcast set: every live authenticated connection and the
// principal it is bound to. Populated on successful authentication, pruned on
// disconnect; never persisted.
type hub struct {
	mu    sync.Mutex
	peers map[*wsPeer]int64
}

func newHub() *hub {
	return &hub{peers: make(map[*wsPeer]int64)}
}

func (h *hub) add(peer *wsPeer, principalID int64) {
	h.mu.Lock()
	h.peers[peer] = principalID
	h.mu.Unlock()
}

func (h *hub) remove(peer *wsPeer) {
	h.mu.Lock()
	delete(h.peers, peer)
	h.mu.Unlock()
}

func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// broadcast writes frame to every live peer. The peer set is snapshotted
// under the hub lock and writes happen outside it, so one slow connection
// cannot block connect/disconnect bookkeeping.
func (h *hub) broadcast(frame wsFrame) {
	h.mu.Lock()
	peers := make([]*wsPeer, 0, len(h.peers))
	for peer := range h.peers {
		peers = append(peers, peer)
	}
	h.mu.Unlock()

	for _, peer := range peers {
		_ = peer.writeFrame(frame)
	}
}

// wsSession tracks the authentication state of a single connection.
type wsSession struct {
	mu          sync.Mutex
	peer        *wsPeer
	principalID int64
	bound       bool
}

func newWSSession(peer *wsPeer) *wsSession {
	return &wsSession{peer: peer}
}

func (s *wsSession) bind(principalID int64) {
	s.mu.Lock()
	s.principalID = principalID
	s.bound = true
	s.mu.Unlock()
}

func (s *wsSession) principal() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principalID, s.bound
}
