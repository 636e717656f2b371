// Package simulation hosts the engine that moves tracked orders through
// their delivery lifecycle. The engine keeps the in-memory set of simulated
// orders, enforces at most one concurrent tick per order, persists every
// step through a unit of work and publishes a location event once the step
// has been committed.
package simulation
