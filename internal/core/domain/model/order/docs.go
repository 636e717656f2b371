// Package order contains the delivery order aggregate and its lifecycle
// state machine. Orders advance strictly forward through
// Created -> InTransit -> Shipped -> Delivered; all position changes go
// through the aggregate's movement methods so the invariants hold no matter
// which component drives them.
package order
