package mongorepo

import "context"

// UnitOfWork runs fn directly. Every write in this package is a single-document
// operation, so no session is opened.
type UnitOfWork struct{}

func NewUnitOfWork() UnitOfWork {
	return UnitOfWork{}
}

func (UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
