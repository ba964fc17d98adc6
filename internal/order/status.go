package order

// Status is the order lifecycle state persisted on the orders row.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether the value is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// rank orders the fulfilment states. Cancelled sits outside the forward
// chain and is handled separately.
func rank(s Status) int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusShipped:
		return 2
	case StatusDelivered:
		return 3
	default:
		return -1
	}
}

// CanTransition reports whether an order may move from one status to
// another. Fulfilment only moves forward; cancellation is allowed from
// pending only, since stock is restored on cancel.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return from == StatusPending
	}
	if from == StatusCancelled {
		return false
	}
	return rank(to) > rank(from)
}
