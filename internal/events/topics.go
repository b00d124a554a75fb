package events

// Topic constants for cart events.
const (
	TopicCartCreated     = "cart.created"
	TopicCartDeleted     = "cart.deleted"
	TopicItemAdded       = "cart.item_added"
	TopicItemRemoved     = "cart.item_removed"
	TopicDeliveryToggled = "cart.delivery_toggled"
	TopicCartPriced      = "cart.priced"
	TopicQuoteComputed   = "pricing.quote_computed"
	TopicQuoteRejected   = "pricing.quote_rejected"
)

// DefaultTopics returns every topic the bus emits.
func DefaultTopics() []string {
	return []string{
		TopicCartCreated,
		TopicCartDeleted,
		TopicItemAdded,
		TopicItemRemoved,
		TopicDeliveryToggled,
		TopicCartPriced,
		TopicQuoteComputed,
		TopicQuoteRejected,
	}
}
