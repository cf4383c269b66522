package railmatch

import (
	"encoding/json"
	"net/http"
)

type healthResponse struct {
	Status         string `json:"status"`
	TimetableTrips int    `json:"timetable_trips"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := healthResponse{Status: "ok"}
	if ix := a.currentIndex(); ix != nil {
		resp.TimetableTrips = ix.Len()
	}
	_ = json.NewEncoder(w).Encode(resp)
}
