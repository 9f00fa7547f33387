package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
)

// ChangeEvent is the envelope carried on the order change feed.
type ChangeEvent struct {
	EventID    string       `json:"event_id"` // uuid, used for dedup
	Kind       ChangeKind   `json:"kind"`
	OccurredAt time.Time    `json:"occurred_at"`
	Producer   string       `json:"producer"`
	Order      ChangeRecord `json:"order"`
}

// ChangeRecord is the partial order row carried by a change event. Only the
// bare row travels on the feed; joined projections (customer, line items)
// never do, so a merge leaves them untouched. Nil fields were absent from
// the payload and are preserved on merge.
type ChangeRecord struct {
	ID              string           `json:"id"`
	Status          *Status          `json:"status,omitempty"`
	TotalAmount     *decimal.Decimal `json:"total_amount,omitempty"`
	DeliveryAddress *string          `json:"delivery_address,omitempty"`
	PaymentMethod   *PaymentMethod   `json:"payment_method,omitempty"`
	CustomerID      *string          `json:"customer_id,omitempty"`
	CreatedAt       *time.Time       `json:"created_at,omitempty"`
	UpdatedAt       *time.Time       `json:"updated_at,omitempty"`
}

// MergeInto shallow-merges the record's present fields into an existing
// order. Applying the same record twice yields the same result.
func (r ChangeRecord) MergeInto(o *Order) {
	if r.Status != nil {
		o.Status = *r.Status
	}
	if r.TotalAmount != nil {
		o.TotalAmount = *r.TotalAmount
	}
	if r.DeliveryAddress != nil {
		o.DeliveryAddress = *r.DeliveryAddress
	}
	if r.PaymentMethod != nil {
		o.PaymentMethod = *r.PaymentMethod
	}
	if r.CustomerID != nil {
		o.CustomerID = r.CustomerID
	}
	if r.CreatedAt != nil {
		o.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		o.UpdatedAt = *r.UpdatedAt
	}
}

// ToOrder builds a fresh order from the record, for UPDATE events that
// arrive before the row is known locally.
func (r ChangeRecord) ToOrder() Order {
	var o Order
	o.ID = r.ID
	r.MergeInto(&o)
	return o
}

// RecordFromOrder projects an order back to the bare row shape, for
// publishing after a write.
func RecordFromOrder(o Order) ChangeRecord {
	status := o.Status
	total := o.TotalAmount
	addr := o.DeliveryAddress
	pm := o.PaymentMethod
	created := o.CreatedAt
	updated := o.UpdatedAt
	return ChangeRecord{
		ID:              o.ID,
		Status:          &status,
		TotalAmount:     &total,
		DeliveryAddress: &addr,
		PaymentMethod:   &pm,
		CustomerID:      o.CustomerID,
		CreatedAt:       &created,
		UpdatedAt:       &updated,
	}
}
