package events

// Topic constants for domain events emitted by the storefront.
const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicOrderCancelled     = "order.cancelled"
	TopicRateUpdated        = "rate.updated"
)
