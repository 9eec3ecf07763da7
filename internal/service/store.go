package service

import (
	"context"

	"questlog/internal/repository"
)

// Store adapts the repository to the service interfaces. Its InTx hands the
// callback the repository transaction as a Tx.
type Store struct {
	*repository.Repository
}

func NewStore(repo *repository.Repository) *Store {
	return &Store{Repository: repo}
}

func (s *Store) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.Repository.InTx(ctx, func(tx *repository.Tx) error {
		return fn(tx)
	})
}
