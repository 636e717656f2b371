// Package services provides domain services that orchestrate business operations
// across multiple domain entities in the tracking system. It implements behavior
// that doesn't naturally belong to a single aggregate root.
//
// The package includes:
//   - MotionService: A domain service advancing orders along their delivery path
//
// Domain services coordinate aggregate state transitions, implementing business
// logic that spans the order lifecycle following Domain-Driven Design principles.
package services
