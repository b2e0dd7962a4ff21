package api

import (
	"net/http"
	"time"
)

type statusResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
	Cards   int    `json:"cards"`
	Skins   int    `json:"skins"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cards, err := s.Store.CountCards()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	list, err := s.Skins.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:  "ok",
		Uptime:  time.Since(s.StartTime).Truncate(time.Second).String(),
		Version: s.Version,
		Cards:   cards,
		Skins:   len(list),
	})
}
