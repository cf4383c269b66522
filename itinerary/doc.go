/*
Package itinerary implements the reconciliation pipeline: routing-service
route alternatives in, timetable-validated rail itineraries out.

The Extractor keeps only TRANSIT steps ridden on the authoritative operator's
heavy rail, binds each to a ScheduledTrip via the timetable index, and voids
any route touching a foreign carrier. The Sampler drives one routing query
per sub-interval of an event window, then dedupes, window-filters, and sorts
the accumulated itineraries into an OptionsSet.
*/
package itinerary
