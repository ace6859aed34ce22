// Package web serves the public, read-only HTTP routes next to the RPC
// services: share-link lookups for the invitation page, a health check and
// the static frontend.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mmynk/weddingcard/internal/models"
	"github.com/mmynk/weddingcard/internal/storage"
)

// Mount attaches an extra handler, such as a Connect service, under Prefix.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// NewRouter builds the HTTP router. Mounts take precedence over the static
// file fallback; an empty staticDir disables static serving.
func NewRouter(store storage.Store, staticDir string, mounts ...Mount) *mux.Router {
	h := &shareHandler{store: store}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", health).Methods(http.MethodGet)
	r.HandleFunc("/api/share/{key}", h.getShared).Methods(http.MethodGet)
	for _, m := range mounts {
		r.PathPrefix(m.Prefix).Handler(m.Handler)
	}
	if staticDir != "" {
		r.PathPrefix("/").Handler(staticFiles(staticDir))
	}
	return r
}

type shareHandler struct {
	store storage.Store
}

// getShared resolves a share key. Keys shaped like a UUID are invitation
// IDs; anything else is a custom slug.
func (h *shareHandler) getShared(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var (
		inv *models.Invitation
		err error
	)
	if _, parseErr := uuid.Parse(key); parseErr == nil {
		inv, err = h.store.GetInvitation(r.Context(), key)
	} else {
		inv, err = h.store.GetInvitationBySlug(r.Context(), key)
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "invitation not found"})
		return
	case err != nil:
		slog.Error("Share lookup failed", "key", key, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, sharedInvitation{
		ShareKey:   inv.ShareKey(),
		Invitation: inv,
	})
}

type sharedInvitation struct {
	ShareKey   string             `json:"share_key"`
	Invitation *models.Invitation `json:"invitation"`
}

type errorBody struct {
	Error string `json:"error"`
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

// staticFiles serves the frontend, falling back to index.html for unknown
// paths so client-side routes such as /budi-siti load the page.
func staticFiles(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(dir, filepath.Clean("/"+urlPath))
		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	})
}
