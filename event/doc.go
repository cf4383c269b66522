/*
Package event is the trigger surface of the pipeline. The Manager reacts to
event creation, update, and deletion by sampling the window, archiving the
option set, and publishing the matching index; it also serves the merged
friend-annotated day view. The Subscriber adapts NATS lifecycle messages
onto the Manager.
*/
package event
