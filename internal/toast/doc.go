// Package toast implements the toast lifecycle engine: identifier allocation,
// a bounded insertion-ordered store with FIFO eviction, a cancellable expiry
// sweeper, and the Manager facade that renderers and transports talk to.
package toast
