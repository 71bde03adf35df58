package domain

import "github.com/shopspring/decimal"

// Product lifecycle states.
const (
	StatusActive = "active"
	StatusSold   = "sold"
	StatusDraft  = "draft"
)

// Conditions a seller can pick for a listing.
var Conditions = []string{"new", "excellent", "good", "fair", "poor"}

const OrderCompleted = "completed"

type Category struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Slug        string `db:"slug" json:"slug"`
	Description string `db:"description" json:"description"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

type Product struct {
	ID          string          `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Condition   string          `db:"condition" json:"condition"` // new | excellent | good | fair | poor
	Status      string          `db:"status" json:"status"`       // active | sold | draft
	ImageURL    string          `db:"image_url" json:"imageUrl"`
	Views       int             `db:"views" json:"views"`
	SellerID    string          `db:"seller_id" json:"sellerId"`
	CategoryID  string          `db:"category_id" json:"categoryId"`
	CreatedAt   string          `db:"created_at" json:"createdAt"`
	UpdatedAt   string          `db:"updated_at" json:"updatedAt"`
}

// ProductListing is a product joined with its seller and category.
type ProductListing struct {
	Product
	Seller   User     `db:"seller" json:"seller"`
	Category Category `db:"category" json:"category"`
}

// SellerProduct is a product joined with its category, used on the seller's own dashboard.
type SellerProduct struct {
	Product
	Category Category `db:"category" json:"category"`
}

type ProductWithSeller struct {
	Product
	Seller User `db:"seller" json:"seller"`
}

type CartItem struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"userId"`
	ProductID string `db:"product_id" json:"productId"`
	Quantity  int    `db:"quantity" json:"quantity"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type CartLine struct {
	CartItem
	Product ProductWithSeller `db:"product" json:"product"`
}

type Order struct {
	ID              string          `db:"id" json:"id"`
	BuyerID         string          `db:"buyer_id" json:"buyerId"`
	Total           decimal.Decimal `db:"total" json:"total"`
	ShippingAddress string          `db:"shipping_address" json:"shippingAddress"`
	Status          string          `db:"status" json:"status"`
	CreatedAt       string          `db:"created_at" json:"createdAt"`
}

type OrderItem struct {
	ID        string          `db:"id" json:"id"`
	OrderID   string          `db:"order_id" json:"orderId"`
	ProductID string          `db:"product_id" json:"productId"`
	SellerID  string          `db:"seller_id" json:"sellerId"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"` // snapshot at purchase time
}

type OrderItemLine struct {
	OrderItem
	Product Product `db:"product" json:"product"`
}

type OrderDetail struct {
	Order
	Items []OrderItemLine `json:"orderItems"`
}

// ProductPatch carries a partial product update. Nil means unchanged.
type ProductPatch struct {
	Title       *string          `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string          `json:"description" validate:"omitnil,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	Condition   *string          `json:"condition" validate:"omitnil,oneof=new excellent good fair poor"`
	Status      *string          `json:"status" validate:"omitnil,oneof=active draft"`
	ImageURL    *string          `json:"imageUrl" validate:"omitnil,max=2048"`
	CategoryID  *string          `json:"categoryId" validate:"omitnil,min=1,max=64"`
}

// NewProduct is the body of a listing creation request.
type NewProduct struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"categoryId" validate:"required,max=64"`
	Condition   string          `json:"condition" validate:"required,oneof=new excellent good fair poor"`
	Status      string          `json:"status" validate:"omitempty,oneof=active draft"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,max=2048"`
}

type LineItem struct {
	ProductID string `json:"productId" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
}

// PlaceOrder is the body of a checkout request.
type PlaceOrder struct {
	Items           []LineItem `json:"items" validate:"required,min=1,max=100,dive"`
	ShippingAddress string     `json:"shippingAddress" validate:"required,max=500"`
}
