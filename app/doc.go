/*
Package app wires the governance engine, the treasury and the stake ledger
on top of a durable, versioned store.

Every state changing call runs under a single lock inside a cache wrap of
the committed state. A successful call is written and committed as a new
version, a failed one is discarded. Events are published to subscribers
only after the commit.
*/
package app
