/*
Package timetable holds the authoritative rail schedule and the fuzzy
matching primitives built on top of it.

The GTFS bundle is flattened into a deterministic list of ScheduledTrips
(trip id, train number, ordered stop calls). BuildIndex groups trips by
train number for lookup; FindStopIndex and ResolveTrip then reconcile a
live departure announcement (train number, boarding stop, wall-clock time)
back to the scheduled trip it belongs to.

Lookups tolerate the noise real announcements carry: train numbers are
matched with substring fallback, stop names with partial-ratio fuzzy
scoring, and 12-hour times with unicode spaces are normalized before
comparison.
*/
package timetable
