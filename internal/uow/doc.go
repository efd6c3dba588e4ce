// Package uow implements the unit-of-work save pipeline sitting above GORM.
//
// A UnitOfWork collects staged entity changes, applies cross-cutting
// persistence concepts to each of them (identity assignment, concurrency
// stamping, audit stamping, soft-delete conversion), publishes the domain
// events raised by staged aggregates, and finally commits everything in a
// single database transaction. Events are published before the commit so that
// anything a handler stages through the same unit of work lands in the same
// transaction as the change that triggered it.
//
// Entities declare which concepts apply to them structurally, by implementing
// the capability interfaces in this package (usually via the mixins in
// internal/domain/model). There is no required base entity type.
package uow
