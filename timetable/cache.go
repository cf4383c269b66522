package timetable

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
)

// SerializeTrips encodes flattened trips to bytes using gob encoding.
// Useful for disk-based caching to avoid re-parsing the GTFS bundle.
//
// Thread safety: safe for concurrent use once the slice is fully built.
func SerializeTrips(trips []ScheduledTrip) ([]byte, error) {
	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)
	if err := encoder.Encode(trips); err != nil {
		return nil, fmt.Errorf("failed to encode timetable: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeTrips decodes trips previously written by SerializeTrips.
func DeserializeTrips(data []byte) ([]ScheduledTrip, error) {
	decoder := gob.NewDecoder(bytes.NewReader(data))
	var trips []ScheduledTrip
	if err := decoder.Decode(&trips); err != nil {
		return nil, fmt.Errorf("failed to decode timetable: %w", err)
	}
	return trips, nil
}

// SerializeTripsToFile writes trips to a gob cache file.
func SerializeTripsToFile(trips []ScheduledTrip, filepath string) error {
	data, err := SerializeTrips(trips)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}

// DeserializeTripsFromFile reads trips from a gob cache file.
func DeserializeTripsFromFile(filepath string) ([]ScheduledTrip, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return DeserializeTrips(data)
}

// MarshalTripsJSON renders trips in the published timetable artifact shape,
// the same document the blob store serves to clients.
func MarshalTripsJSON(trips []ScheduledTrip) ([]byte, error) {
	return json.Marshal(trips)
}

// UnmarshalTripsJSON parses a published timetable artifact.
func UnmarshalTripsJSON(data []byte) ([]ScheduledTrip, error) {
	var trips []ScheduledTrip
	if err := json.Unmarshal(data, &trips); err != nil {
		return nil, fmt.Errorf("failed to parse timetable artifact: %w", err)
	}
	return trips, nil
}
