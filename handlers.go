package railmatch

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/railmatch/railmatch/event"
	"github.com/railmatch/railmatch/routing"
	"github.com/railmatch/railmatch/timetable"
)

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, err error) {
	var ie *event.InputError
	if errors.As(err, &ie) {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: ie.Error()})
		return
	}
	var ue *routing.UpstreamError
	if errors.As(err, &ue) {
		writeJSON(w, http.StatusBadGateway, apiResponse{Message: ue.Error()})
		return
	}
	log.Printf("request failed: %v", err)
	writeJSON(w, http.StatusInternalServerError, apiResponse{Message: "internal error"})
}

// handleDayOptions returns the merged, friend-annotated itinerary sets of
// every event the user has on a date.
func (a *App) handleDayOptions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	date := r.URL.Query().Get("date")
	if userID == "" || date == "" {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: "user and date are required"})
		return
	}
	view, err := a.manager.DayView(r.Context(), userID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: view})
}

// handleTripOptions samples a window on demand without publishing to the
// matching index. Partial window failures are reported as failure while
// still carrying the usable data.
func (a *App) handleTripOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: "bad start time"})
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: "bad end time"})
		return
	}
	res, err := a.manager.OneOffOptions(r.Context(), q.Get("origin"), q.Get("destination"), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := apiResponse{Success: res.Success(), Data: res}
	if !res.Success() {
		resp.Message = res.Errors[0].Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTimetableRefresh reloads the GTFS bundle, republishes the timetable
// artifact, and swaps the live index.
func (a *App) handleTimetableRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiResponse{Message: "POST required"})
		return
	}
	if a.cfg.Timetable.StaticURL == "" {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: "no static timetable URL configured"})
		return
	}
	trips, err := timetable.LoadFromStaticZip(a.cfg.Timetable.StaticURL, a.cfg.Timetable.AgencyID,
		time.Duration(a.cfg.Timetable.TimeoutMS)*time.Millisecond)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := timetable.MarshalTripsJSON(trips)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := a.blobs.Put(r.Context(), a.cfg.Paths.TimetablePath, data); err != nil {
		writeError(w, err)
		return
	}
	a.SetIndex(timetable.BuildIndex(trips))
	log.Printf("timetable refreshed: %d trips", len(trips))
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: map[string]int{"trips": len(trips)}})
}
