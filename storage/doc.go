/*
Package storage holds the Postgres and in-memory implementations of the
persistence interfaces the pipeline consumes: blobs, match records, route
summaries, friendships, and event records. Interfaces are defined by the
consuming packages; this package only satisfies them.
*/
package storage
