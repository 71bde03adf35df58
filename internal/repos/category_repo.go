package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"marketplace/internal/domain"
)

type CategoryRepo struct{ db DBTX }

func NewCategoryRepo(db DBTX) *CategoryRepo { return &CategoryRepo{db: db} }

var categoryCols = strings.Join(categoryFields, ", ")

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+categoryCols+` FROM categories ORDER BY name`)
	return out, err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.GetContext(ctx, &c, `SELECT `+categoryCols+` FROM categories WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c domain.Category) (*domain.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = stamp()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories(id, name, slug, description, created_at)
		VALUES(?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Slug, c.Description, c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
