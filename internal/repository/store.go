package repository

import "context"

// Store bundles the engine's repositories behind one handle so usecases can
// run multi-write operations inside a single transaction boundary.
type Store interface {
	Catalog() CatalogRepository
	Assignments() AssignmentRepository
	Mastery() MasteryRepository
	Profiles() ProfileRepository
	Attempts() AttemptRepository

	// InTx runs fn against a transactional view of the store. Every write fn
	// performs is committed together or rolled back together; partially
	// applied submissions must never be observable.
	InTx(ctx context.Context, fn func(tx Store) error) error
}
