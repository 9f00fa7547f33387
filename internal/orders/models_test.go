package orders

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductLowStock(t *testing.T) {
	p := Product{StockQuantity: 5, LowStockThreshold: 10}
	assert.True(t, p.LowStock())

	// boundary is strictly less-than
	p.StockQuantity = 10
	assert.False(t, p.LowStock())

	p.StockQuantity = 11
	assert.False(t, p.LowStock())

	p = Product{StockQuantity: 0, LowStockThreshold: DefaultLowStockThreshold}
	assert.True(t, p.LowStock())
}

func TestLineItemSubtotal(t *testing.T) {
	li := LineItem{Quantity: 3, PriceAtOrder: decimal.RequireFromString("45.50")}
	assert.True(t, li.Subtotal().Equal(decimal.RequireFromString("136.50")))
}

func TestChangeRecordMergePreservesAbsentFields(t *testing.T) {
	custID := "cust-1"
	o := Order{
		ID:              "1",
		Status:          StatusPending,
		TotalAmount:     decimal.NewFromInt(100),
		DeliveryAddress: "12 Rizal Ave",
		PaymentMethod:   PaymentCOD,
		CustomerID:      &custID,
		Customer:        &CustomerRef{FullName: "Ana Cruz"},
		Items:           []LineItem{{ID: "li-1", Quantity: 2}},
	}

	next := StatusProcessing
	rec := ChangeRecord{ID: "1", Status: &next}
	rec.MergeInto(&o)

	assert.Equal(t, StatusProcessing, o.Status)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "12 Rizal Ave", o.DeliveryAddress)
	assert.NotNil(t, o.Customer)
	assert.Len(t, o.Items, 1)
}

func TestRecordFromOrderRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	o := Order{
		ID:              "7",
		Status:          StatusOutForDelivery,
		TotalAmount:     decimal.RequireFromString("12.25"),
		DeliveryAddress: "Km 4 Diversion Rd",
		PaymentMethod:   PaymentGCash,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	got := RecordFromOrder(o).ToOrder()
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, o.Status, got.Status)
	assert.True(t, got.TotalAmount.Equal(o.TotalAmount))
	assert.Equal(t, o.DeliveryAddress, got.DeliveryAddress)
	assert.Nil(t, got.CustomerID)
}
