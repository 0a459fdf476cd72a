package server

import (
	"bytes"
	"encoding/json"
	"testing"
)

func newBufferPeer() (*wsPeer, *bytes.Buffer) {
	var buf bytes.Buffer
	return newWSPeer(json.NewEncoder(&buf)), &buf
}

func TestHubBroadcastReachesOnlyRegisteredPeers(t *testing.T) {
	h := newHub()

	first, firstOut := newBufferPeer()
	second, secondOut := newBufferPeer()
	h.add(first, 1)
	h.add(second, 2)
	if h.size() != 2 {
		t.Fatalf("hub size = %d, want 2", h.size())
	}

	h.remove(second)
	if h.size() != 1 {
		t.Fatalf("hub size after remove = %d, want 1", h.size())
	}

	h.broadcast(wsFrame{Type: "new-message"})

	var frame wsFrame
	if err := json.NewDecoder(firstOut).Decode(&frame); err != nil {
		t.Fatalf("decode broadcast frame: %v", err)
	}
	if frame.Type != "new-message" {
		t.Fatalf("frame type = %q, want new-message", frame.Type)
	}
	if secondOut.Len() != 0 {
		t.Fatalf("removed peer received %d bytes", secondOut.Len())
	}
}

func TestHubRemoveIsIdempotent(t *testing.T) {
	h := newHub()
	peer, _ := newBufferPeer()
	h.add(peer, 1)
	h.remove(peer)
	h.remove(peer)
	if h.size() != 0 {
		t.Fatalf("hub size = %d, want 0", h.size())
	}
}
