package orders

type Status string

const (
	StatusPending        Status = "Pending"
	StatusProcessing     Status = "Processing"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusCompleted      Status = "Completed"
	StatusCancelled      Status = "Cancelled"
)

// AllStatuses is the fixed iteration order for per-status breakdowns.
var AllStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusOutForDelivery,
	StatusCompleted,
	StatusCancelled,
}

var validNext = map[Status]map[Status]bool{
	StatusPending:        {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing:     {StatusOutForDelivery: true, StatusCancelled: true},
	StatusOutForDelivery: {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted:      {},
	StatusCancelled:      {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Terminal() bool {
	return len(validNext[s]) == 0 && s.Valid()
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

type DeliveryStatus string

const (
	DeliveryAssigned  DeliveryStatus = "assigned"
	DeliveryPickedUp  DeliveryStatus = "picked_up"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

var validNextDelivery = map[DeliveryStatus]map[DeliveryStatus]bool{
	DeliveryAssigned:  {DeliveryPickedUp: true, DeliveryFailed: true},
	DeliveryPickedUp:  {DeliveryDelivered: true, DeliveryFailed: true},
	DeliveryDelivered: {},
	DeliveryFailed:    {},
}

func CanTransitionDelivery(from, to DeliveryStatus) bool {
	return validNextDelivery[from][to]
}
