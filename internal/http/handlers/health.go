package handlers

import (
	"net/http"
)

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (a *App) Root(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, healthResponse{Status: "healthy", Message: "VTO API is running"})
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, healthResponse{Status: "healthy", Message: "Service is operational"})
}
