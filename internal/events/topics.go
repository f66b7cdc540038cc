package events

// Topics emitted by this service.
const (
	TopicOrderCreated     = "order.created"
	TopicPromotionChanged = "promotion.changed"
)
