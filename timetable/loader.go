package timetable

import (
	"archive/zip"
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// loader accumulates raw GTFS rows before flattening into ScheduledTrips.
type loader struct {
	agencyID string

	routeAgency   map[string]string
	tripRoute     map[string]string
	tripShortName map[string]string
	stopNames     map[string]string
	tripStops     map[string][]StopTime
}

func newLoader(agencyID string) *loader {
	return &loader{
		agencyID:      agencyID,
		routeAgency:   make(map[string]string),
		tripRoute:     make(map[string]string),
		tripShortName: make(map[string]string),
		stopNames:     make(map[string]string),
		tripStops:     make(map[string][]StopTime),
	}
}

// LoadFromStaticZip downloads a GTFS bundle and flattens it into trips.
// A zero timeout falls back to 60s; bundles can be large.
func LoadFromStaticZip(url, agencyID string, timeout time.Duration) ([]ScheduledTrip, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	tmp, err := os.CreateTemp("", "timetable-*.zip")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	return LoadFromLocalZip(tmp.Name(), agencyID)
}

// LoadFromLocalZip flattens a GTFS bundle on disk into trips.
func LoadFromLocalZip(path, agencyID string) ([]ScheduledTrip, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	ld := newLoader(agencyID)
	for _, f := range zr.File {
		name := strings.ToLower(f.Name)
		if name == "routes.txt" || name == "trips.txt" || name == "stops.txt" || name == "stop_times.txt" {
			if err := ld.consumeCSV(f); err != nil {
				return nil, err
			}
		}
	}
	return ld.flatten(), nil
}

func (ld *loader) consumeCSV(f *zip.File) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	rec, err := csvr.ReadAll()
	if err != nil {
		return err
	}
	if len(rec) == 0 {
		return nil
	}
	head := rec[0]
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	switch strings.ToLower(f.Name) {
	case "routes.txt":
		rID := idx("route_id")
		rAg := idx("agency_id")
		if rID < 0 {
			return nil
		}
		for _, row := range rec[1:] {
			agency := ""
			if rAg >= 0 && rAg < len(row) {
				agency = row[rAg]
			}
			ld.routeAgency[row[rID]] = agency
		}
	case "trips.txt":
		rID := idx("route_id")
		tID := idx("trip_id")
		sn := idx("trip_short_name")
		if tID < 0 {
			return nil
		}
		for _, row := range rec[1:] {
			if rID >= 0 && rID < len(row) {
				ld.tripRoute[row[tID]] = row[rID]
			}
			if sn >= 0 && sn < len(row) {
				ld.tripShortName[row[tID]] = row[sn]
			}
		}
	case "stops.txt":
		sID := idx("stop_id")
		sN := idx("stop_name")
		if sID < 0 || sN < 0 {
			return nil
		}
		for _, row := range rec[1:] {
			ld.stopNames[row[sID]] = row[sN]
		}
	case "stop_times.txt":
		tID := idx("trip_id")
		sID := idx("stop_id")
		sq := idx("stop_sequence")
		arrTime := idx("arrival_time")
		depTime := idx("departure_time")
		if tID < 0 || sID < 0 || sq < 0 {
			return nil
		}
		for _, row := range rec[1:] {
			seq, _ := strconv.Atoi(row[sq])
			st := StopTime{StopID: row[sID], StopSequence: seq}
			if arrTime >= 0 && arrTime < len(row) {
				st.ArrivalTime = row[arrTime]
			}
			if depTime >= 0 && depTime < len(row) {
				st.DepartureTime = row[depTime]
			}
			ld.tripStops[row[tID]] = append(ld.tripStops[row[tID]], st)
		}
	}
	return nil
}

// flatten assembles the per-file maps into sorted ScheduledTrips. When an
// agency id is configured, trips on routes run by other agencies are dropped.
func (ld *loader) flatten() []ScheduledTrip {
	tripIDs := make([]string, 0, len(ld.tripStops))
	for id := range ld.tripStops {
		if ld.agencyID != "" {
			if ag, ok := ld.routeAgency[ld.tripRoute[id]]; ok && ag != "" && ag != ld.agencyID {
				continue
			}
		}
		tripIDs = append(tripIDs, id)
	}
	sort.Strings(tripIDs)
	trips := make([]ScheduledTrip, 0, len(tripIDs))
	for _, id := range tripIDs {
		stops := ld.tripStops[id]
		sort.Slice(stops, func(i, j int) bool { return stops[i].StopSequence < stops[j].StopSequence })
		for i := range stops {
			stops[i].StopName = ld.stopNames[stops[i].StopID]
		}
		trips = append(trips, ScheduledTrip{
			TripID:        id,
			TripShortName: ld.tripShortName[id],
			Stops:         stops,
		})
	}
	return trips
}
