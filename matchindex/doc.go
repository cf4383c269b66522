/*
Package matchindex maintains the per-date, per-trip membership index that
friend discovery reads. Writers publish MatchRecords and route summaries
when an event's itineraries are computed; the Annotator joins the index
against a user's friend list at read time.
*/
package matchindex
