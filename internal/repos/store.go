package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Store is the persistence gateway: one handle exposing every entity repo.
type Store struct {
	db *sqlx.DB // nil when the store is bound to a transaction

	Users      *UserRepo
	Categories *CategoryRepo
	Products   *ProductRepo
	Cart       *CartRepo
	Orders     *OrderRepo
}

func NewStore(db *sqlx.DB) *Store {
	s := bind(db)
	s.db = db
	return s
}

func bind(q DBTX) *Store {
	return &Store{
		Users:      NewUserRepo(q),
		Categories: NewCategoryRepo(q),
		Products:   NewProductRepo(q),
		Cart:       NewCartRepo(q),
		Orders:     NewOrderRepo(q),
	}
}

// InTx runs fn against a Store bound to a single transaction. The transaction
// commits only when fn returns nil. Nested calls reuse the outer transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(bind(tx)); err != nil {
		return err
	}
	return tx.Commit()
}
