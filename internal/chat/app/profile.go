package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/torcida/fanhub/internal/storage"
)

type profileResponse struct {
	ID          int64    `json:"id"`
	DisplayName string   `json:"display_name"`
	IsAdmin     bool     `json:"is_admin"`
	Points      int64    `json:"points"`
	Badges      []string `json:"badges"`
}

// handleProfile serves the read-only principal state behind a bearer
// credential: points, badges, and admin flag.
func handleProfile(w http.ResponseWriter, r *http.Request, deps Deps) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	credential := bearerToken(r)
	if credential == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	principalID, err := deps.Authorizer.Authenticate(r.Context(), credential)
	if err != nil {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	principal, err := deps.Principals.GetPrincipal(r.Context(), principalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "principal not found", http.StatusNotFound)
			return
		}
		log.Printf("profile: load principal %d: %v", principalID, err)
		http.Error(w, "profile unavailable", http.StatusInternalServerError)
		return
	}

	badges := principal.Badges
	if badges == nil {
		badges = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(profileResponse{
		ID:          principal.ID,
		DisplayName: principal.DisplayName,
		IsAdmin:     principal.IsAdmin,
		Points:      principal.Points,
		Badges:      badges,
	}); err != nil {
		log.Printf("profile: encode response for principal %d: %v", principalID, err)
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
