package repository

import (
	"context"
	"fmt"
)

// UnitOfWork defines the contract for transactional work and repository access.
//
// Do runs fn inside one transaction; every repository obtained from the
// UnitOfWork passed to fn shares that transaction. GetRepository is keyed by
// a nil pointer to the repository interface:
//
//	repoAny, err := uow.GetRepository((*advancerepo.Repository)(nil))
//	repo := repoAny.(advancerepo.Repository)
type UnitOfWork interface {
	// Do executes the given function within a transaction boundary.
	// If the function returns an error, the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns a repository of the requested type, bound to the current transaction.
	GetRepository(repoType any) (any, error)
}

// Get fetches the repository T from uow and asserts its type.
//
//	repo, err := repository.Get[advancerepo.Repository](uow)
func Get[T any](uow UnitOfWork) (T, error) {
	var zero T
	repoAny, err := uow.GetRepository((*T)(nil))
	if err != nil {
		return zero, err
	}
	repo, ok := repoAny.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected repository type %T", repoAny)
	}
	return repo, nil
}
