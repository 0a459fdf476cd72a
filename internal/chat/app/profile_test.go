package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/torcida/fanhub/internal/storage"
)

func profileRequest(t *testing.T, url string, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url+"/api/profile", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request profile: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func TestProfileReturnsPrincipalState(t *testing.T) {
	store := newMemStore()
	if err := store.PutPrincipal(context.Background(), storage.Principal{
		ID:          1,
		DisplayName: "Ana",
		Points:      35,
		Badges:      []string{"Rede Social Vinculada"},
	}); err != nil {
		t.Fatalf("seed principal: %v", err)
	}
	srv := newChatTestServer(t, newTestDeps(store))

	resp := profileRequest(t, srv.URL, "token-ana")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.ID != 1 || body.DisplayName != "Ana" || body.Points != 35 {
		t.Fatalf("profile = %+v", body)
	}
	if len(body.Badges) != 1 || body.Badges[0] != "Rede Social Vinculada" {
		t.Fatalf("badges = %v", body.Badges)
	}
}

func TestProfileEncodesEmptyBadgeListAsArray(t *testing.T) {
	store := newMemStore()
	if err := store.PutPrincipal(context.Background(), storage.Principal{ID: 1, DisplayName: "Ana"}); err != nil {
		t.Fatalf("seed principal: %v", err)
	}
	srv := newChatTestServer(t, newTestDeps(store))

	resp := profileRequest(t, srv.URL, "token-ana")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if string(raw["badges"]) != "[]" {
		t.Fatalf("badges json = %s, want []", raw["badges"])
	}
}

func TestProfileRejectsMissingOrInvalidCredentials(t *testing.T) {
	store := newMemStore()
	srv := newChatTestServer(t, newTestDeps(store))

	if resp := profileRequest(t, srv.URL, ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", resp.StatusCode)
	}
	if resp := profileRequest(t, srv.URL, "bogus"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("invalid token status = %d, want 401", resp.StatusCode)
	}
}

func TestProfileUnknownPrincipal(t *testing.T) {
	store := newMemStore()
	srv := newChatTestServer(t, newTestDeps(store))

	// token-ana authenticates as principal 1, which was never stored.
	if resp := profileRequest(t, srv.URL, "token-ana"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
