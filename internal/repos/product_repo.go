package repos

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"marketplace/internal/domain"
)

type ProductRepo struct{ db DBTX }

func NewProductRepo(db DBTX) *ProductRepo { return &ProductRepo{db: db} }

var (
	productCols = strings.Join(productFields, ", ")
	listingCols = cols("p", "", productFields) + ", " + cols("u", "seller", userFields) + ", " + cols("c", "category", categoryFields)
	listingFrom = ` FROM products p
	  JOIN users u      ON u.id = p.seller_id
	  JOIN categories c ON c.id = p.category_id`
)

// ProductFilter narrows List. Empty fields are ignored.
type ProductFilter struct {
	CategoryID string
	Search     string
}

// List returns active products, newest first. Category and search filters are additive.
func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]domain.ProductListing, error) {
	where := []string{`p.status = 'active'`}
	args := []any{}
	if f.CategoryID != "" {
		where = append(where, `p.category_id = ?`)
		args = append(args, f.CategoryID)
	}
	if f.Search != "" {
		where = append(where, `unicode_lower(p.title) LIKE unicode_lower(?) ESCAPE '\'`)
		args = append(args, "%"+likeEscape(f.Search)+"%")
	}

	out := []domain.ProductListing{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+listingCols+listingFrom+`
	  WHERE `+strings.Join(where, " AND ")+`
	  ORDER BY p.created_at DESC, p.rowid DESC`, args...)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (*domain.ProductListing, error) {
	var p domain.ProductListing
	if err := r.db.GetContext(ctx, &p, `SELECT `+listingCols+listingFrom+` WHERE p.id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Find returns the bare product row.
func (r *ProductRepo) Find(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.GetContext(ctx, &p, `SELECT `+productCols+` FROM products WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// ListBySeller returns every listing of a seller regardless of status.
func (r *ProductRepo) ListBySeller(ctx context.Context, sellerID string) ([]domain.SellerProduct, error) {
	out := []domain.SellerProduct{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT `+cols("p", "", productFields)+`, `+cols("c", "category", categoryFields)+`
	  FROM products p
	  JOIN categories c ON c.id = p.category_id
	  WHERE p.seller_id = ?
	  ORDER BY p.created_at DESC, p.rowid DESC`, sellerID)
	return out, err
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = stamp()
	p.UpdatedAt = p.CreatedAt
	p.Views = 0
	if p.Status == "" {
		p.Status = domain.StatusActive
	}
	p.Price = p.Price.Round(2)
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO products(id, title, description, price, condition, status, image_url, views, seller_id, category_id, created_at, updated_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)
	`, p.ID, p.Title, p.Description, p.Price.StringFixed(2), p.Condition, p.Status, p.ImageURL,
		p.SellerID, p.CategoryID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isForeignKey(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &p, nil
}

// Update applies the non-nil fields of patch and bumps updated_at.
func (r *ProductRepo) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	var set setList
	set.addString("title", patch.Title)
	set.addString("description", patch.Description)
	if patch.Price != nil {
		set.add("price", patch.Price.StringFixed(2))
	}
	set.addString("condition", patch.Condition)
	set.addString("status", patch.Status)
	set.addString("image_url", patch.ImageURL)
	set.addString("category_id", patch.CategoryID)
	set.add("updated_at", stamp())

	var p domain.Product
	args := append(set.args, id)
	err := r.db.GetContext(ctx, &p, `UPDATE products SET `+set.String()+` WHERE id = ? RETURNING `+productCols, args...)
	if err != nil {
		if isForeignKey(err) {
			return nil, ErrConflict
		}
		return nil, notFound(err)
	}
	return &p, nil
}

// Delete removes a listing. Listings referenced by an order cannot be deleted.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		if isForeignKey(err) {
			return fmt.Errorf("%w: product has been ordered", ErrConflict)
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepo) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE products SET views = views + 1 WHERE id = ?`, id)
	return err
}

// MarkSold flips every listed product to sold. With requireActive it returns
// ErrConflict unless every product was still active.
func (r *ProductRepo) MarkSold(ctx context.Context, ids []string, requireActive bool) error {
	ids = distinct(ids)
	if len(ids) == 0 {
		return nil
	}
	stmt := `UPDATE products SET status = 'sold', updated_at = ? WHERE id IN (?)`
	if requireActive {
		stmt += ` AND status = 'active'`
	}
	query, args, err := sqlx.In(stmt, stamp(), ids)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return err
	}
	if requireActive {
		if n, _ := res.RowsAffected(); int(n) != len(ids) {
			return ErrConflict
		}
	}
	return nil
}

func likeEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
