package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"marketplace/internal/domain"
)

type OrderRepo struct{ db DBTX }

func NewOrderRepo(db DBTX) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, buyer_id, total, shipping_address, status, created_at`

var itemLineCols = `oi.id, oi.order_id, oi.product_id, oi.seller_id, oi.quantity, oi.price, ` + cols("p", "product", productFields)

// Create inserts the order header and its items. Callers wanting all-or-nothing
// semantics run it through Store.InTx.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order, items []domain.OrderItem) (*domain.OrderDetail, error) {
	o.ID = uuid.NewString()
	o.CreatedAt = stamp()
	o.Total = o.Total.Round(2)
	if _, err := r.db.ExecContext(ctx, `
	  INSERT INTO orders(id, buyer_id, total, shipping_address, status, created_at)
	  VALUES(?, ?, ?, ?, ?, ?)
	`, o.ID, o.BuyerID, o.Total.StringFixed(2), o.ShippingAddress, o.Status, o.CreatedAt); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].OrderID = o.ID
		if _, err := r.db.ExecContext(ctx, `
		  INSERT INTO order_items(id, order_id, product_id, seller_id, quantity, price)
		  VALUES(?, ?, ?, ?, ?, ?)
		`, items[i].ID, o.ID, items[i].ProductID, items[i].SellerID, items[i].Quantity, items[i].Price.StringFixed(2)); err != nil {
			if isForeignKey(err) {
				return nil, ErrConflict
			}
			return nil, err
		}
	}
	return &domain.OrderDetail{Order: o}, nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (*domain.OrderDetail, error) {
	var o domain.OrderDetail
	if err := r.db.GetContext(ctx, &o.Order, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id); err != nil {
		return nil, notFound(err)
	}
	o.Items = []domain.OrderItemLine{}
	if err := r.db.SelectContext(ctx, &o.Items, `
	  SELECT `+itemLineCols+`
	  FROM order_items oi
	  JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id = ?
	  ORDER BY oi.rowid`, id); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByBuyer returns the buyer's orders newest first, each with its items.
func (r *OrderRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.OrderDetail, error) {
	var orders []domain.Order
	if err := r.db.SelectContext(ctx, &orders, `
	  SELECT `+orderCols+` FROM orders
	  WHERE buyer_id = ?
	  ORDER BY created_at DESC, rowid DESC`, buyerID); err != nil {
		return nil, err
	}
	out := make([]domain.OrderDetail, len(orders))
	if len(orders) == 0 {
		return out, nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		out[i] = domain.OrderDetail{Order: o, Items: []domain.OrderItemLine{}}
	}
	query, args, err := sqlx.In(`
	  SELECT `+itemLineCols+`
	  FROM order_items oi
	  JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id IN (?)
	  ORDER BY oi.rowid`, ids)
	if err != nil {
		return nil, err
	}
	var lines []domain.OrderItemLine
	if err := r.db.SelectContext(ctx, &lines, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, l := range lines {
		i := index[l.OrderID]
		out[i].Items = append(out[i].Items, l)
	}
	return out, nil
}
