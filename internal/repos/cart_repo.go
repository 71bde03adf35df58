package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"marketplace/internal/domain"
)

type CartRepo struct{ db DBTX }

func NewCartRepo(db DBTX) *CartRepo { return &CartRepo{db: db} }

var cartCols = strings.Join([]string{"id", "user_id", "product_id", "quantity", "created_at"}, ", ")

// List returns the user's cart lines with product and seller, newest first.
func (r *CartRepo) List(ctx context.Context, userID string) ([]domain.CartLine, error) {
	out := []domain.CartLine{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at,
	         `+cols("p", "product", productFields)+`,
	         `+cols("u", "product.seller", userFields)+`
	  FROM cart_items ci
	  JOIN products p ON p.id = ci.product_id
	  JOIN users u    ON u.id = p.seller_id
	  WHERE ci.user_id = ?
	  ORDER BY ci.created_at DESC, ci.rowid DESC`, userID)
	return out, err
}

// Add inserts a cart line or, when the user already has one for the product,
// adds qty to it. Single statement, so concurrent adds cannot split the row.
func (r *CartRepo) Add(ctx context.Context, userID, productID string, qty int) (*domain.CartItem, error) {
	var it domain.CartItem
	err := r.db.GetContext(ctx, &it, `
		INSERT INTO cart_items(id, user_id, product_id, quantity, created_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(user_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + excluded.quantity
		RETURNING `+cartCols,
		uuid.NewString(), userID, productID, qty, stamp())
	if err != nil {
		if isForeignKey(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// UpdateQuantity sets the quantity of one of the user's lines.
func (r *CartRepo) UpdateQuantity(ctx context.Context, userID, id string, qty int) (*domain.CartItem, error) {
	var it domain.CartItem
	err := r.db.GetContext(ctx, &it, `
		UPDATE cart_items SET quantity = ?
		WHERE id = ? AND user_id = ?
		RETURNING `+cartCols, qty, id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

func (r *CartRepo) Remove(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}
