package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"vto/internal/providers/garment"
	"vto/internal/storage"
)

type classifyResponse struct {
	RequestID            string                  `json:"request_id"`
	Status               string                  `json:"status"`
	ClassificationResult *garment.Classification `json:"classification_result,omitempty"`
	Error                string                  `json:"error,omitempty"`
	Message              string                  `json:"message,omitempty"`
}

// ClassifyGarment answers synchronously with the garment category of one image.
func (a *App) ClassifyGarment(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !a.decode(w, r, &req) {
		return
	}
	requestID := req.GroupID + "_" + req.UserID
	log := a.Logger.With().Str("request_id", requestID).Logger()

	if a.Classifier == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "garment classification is not configured")
		return
	}

	var image []byte
	switch {
	case strings.TrimSpace(req.ImageBase64) != "":
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.ImageBase64))
		if err != nil || len(data) == 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "Failed to load image data")
			return
		}
		image = data
	default:
		if a.Store == nil {
			a.error(w, http.StatusInternalServerError, "internal", "object storage is not configured")
			return
		}
		data, err := a.Store.Get(r.Context(), req.ImageObjectName)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && len(data) == 0) {
			a.error(w, http.StatusBadRequest, "bad_request", "Failed to load image data")
			return
		}
		if err != nil {
			log.Error().Err(err).Str("object_name", req.ImageObjectName).Msg("load classification image failed")
			a.error(w, http.StatusInternalServerError, "internal", err.Error())
			return
		}
		image = data
	}

	result, err := a.Classifier.Classify(r.Context(), image)
	if err != nil {
		log.Warn().Err(err).Msg("garment classification failed")
		a.json(w, http.StatusOK, classifyResponse{
			RequestID: requestID,
			Status:    "error",
			Error:     err.Error(),
			Message:   "Garment classification failed",
		})
		return
	}
	a.json(w, http.StatusOK, classifyResponse{
		RequestID:            requestID,
		Status:               "success",
		ClassificationResult: result,
		Message:              "Garment classification completed successfully",
	})
}
