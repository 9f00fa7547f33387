package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryFuel      Category = "Fuel"
	CategoryMotorOil  Category = "Motor Oil"
	CategoryEngineOil Category = "Engine Oil"
)

type PaymentMethod string

const (
	PaymentCOD   PaymentMethod = "Cash on Delivery"
	PaymentGCash PaymentMethod = "G-Cash"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleRider    Role = "rider"
	RoleAdmin    Role = "admin"
)

const DefaultLowStockThreshold = 10

type Product struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Category          Category        `json:"category"`
	CurrentPrice      decimal.Decimal `json:"current_price"`
	StockQuantity     int             `json:"stock_quantity"`
	Unit              string          `json:"unit"`
	Active            bool            `json:"active"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// LowStock is derived, never stored. Boundary is strictly less-than.
func (p Product) LowStock() bool {
	return p.StockQuantity < p.LowStockThreshold
}

type Order struct {
	ID              string          `json:"id"`
	Status          Status          `json:"status"` // see status.go
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DeliveryAddress string          `json:"delivery_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	CustomerID      *string         `json:"customer_id"` // nil for guest checkout
	Customer        *CustomerRef    `json:"customer,omitempty"`
	Items           []LineItem      `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CustomerRef is the minimal profile projection joined onto an order row.
type CustomerRef struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

type LineItem struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Unit         string          `json:"unit"`
	Category     Category        `json:"category"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"` // immutable once recorded
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.PriceAtOrder.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type Profile struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Address     string    `json:"address"`
	Role        Role      `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Delivery struct {
	ID          string         `json:"id"`
	OrderID     string         `json:"order_id"`
	RiderID     string         `json:"rider_id"`
	Status      DeliveryStatus `json:"status"` // see status.go
	AssignedAt  time.Time      `json:"assigned_at"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
}
