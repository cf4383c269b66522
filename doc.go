/*
Package railmatch assembles the itinerary pipeline behind an HTTP API:
timetable refresh, on-demand trip options, and the friend-annotated day
view. Event lifecycle triggers arrive over NATS and are handled by the
event package; this package owns process wiring, the live timetable index,
and the server lifecycle.
*/
package railmatch
