/*
Package routing is the typed client for the external directions service.
Responses are decoded into the small subset of the provider's schema the
pipeline reads: routes, legs, steps, and the transit details hung off each
TRANSIT step.
*/
package routing
