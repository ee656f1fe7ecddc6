package handlers

import (
	"net/http"
	"strings"
	"time"

	"vto/internal/storage"
)

// ObjectNames allocates storage identifiers for a new request.
func (a *App) ObjectNames(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group_id")
	userID := r.URL.Query().Get("user_id")
	if strings.TrimSpace(groupID) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "group_id must be non-empty string")
		return
	}
	if strings.TrimSpace(userID) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "user_id must be non-empty string")
		return
	}
	ids := a.Addresser.New(groupID, userID)
	a.Logger.Debug().Str("group_id", groupID).Str("user_id", userID).Str("uid", ids.UID).Msg("object names generated")
	a.json(w, http.StatusOK, ids)
}

type presignResponse struct {
	URL        *string `json:"url"`
	ObjectName string  `json:"object_name"`
	Error      *string `json:"error"`
}

func (a *App) PresignUpload(w http.ResponseWriter, r *http.Request) {
	a.presign(w, r, storage.MethodPut, "Failed to generate presigned upload URL")
}

func (a *App) PresignDownload(w http.ResponseWriter, r *http.Request) {
	a.presign(w, r, storage.MethodGet, "Failed to generate presigned download URL")
}

// presign reports signing failures in the body with a 200, as clients expect.
func (a *App) presign(w http.ResponseWriter, r *http.Request, method, failure string) {
	var req presignRequest
	if !a.decode(w, r, &req) {
		return
	}
	if a.Store == nil {
		a.error(w, http.StatusInternalServerError, "internal", "object storage is not configured")
		return
	}
	ttl := a.Config.PresignDefault
	if req.Expiration != nil {
		ttl = time.Duration(*req.Expiration) * time.Second
	}
	if ttl <= 0 {
		ttl = 900 * time.Second
	}
	url, err := a.Store.Presign(r.Context(), req.ObjectName, method, ttl)
	if err != nil {
		a.Logger.Error().Err(err).Str("object_name", req.ObjectName).Str("method", method).Msg("presign failed")
		a.json(w, http.StatusOK, presignResponse{ObjectName: req.ObjectName, Error: &failure})
		return
	}
	a.json(w, http.StatusOK, presignResponse{URL: &url, ObjectName: req.ObjectName})
}
