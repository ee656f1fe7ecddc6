package handlers

import (
	"net/http"

	"vto/internal/middleware"
	"vto/internal/providers/prompt"
)

func (a *App) EnhancePrompt(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if !a.decode(w, r, &req) {
		return
	}
	if a.Enhancer == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "prompt enhancement is not configured")
		return
	}
	lang := req.Language
	if lang == "" {
		lang = middleware.LocaleFromContext(r.Context())
	}
	a.Logger.Info().Int("prompt_length", len(req.Prompt)).Str("language", lang).Msg("prompt enhancement requested")

	res, err := a.Enhancer.Enhance(r.Context(), prompt.EnhanceRequest{Prompt: req.Prompt, Language: lang})
	if err != nil {
		a.error(w, http.StatusInternalServerError, "enhance_failed", "Failed to enhance prompt: "+err.Error())
		return
	}
	a.json(w, http.StatusOK, res)
}
