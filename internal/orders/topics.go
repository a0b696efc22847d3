package orders

const (
	TopicOrderPlaced        = "storefront.order.placed"
	TopicOrderStatusChanged = "storefront.order.status"
)

// Partition key = order id so one order's events stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
