package orders

const TopicOrderChanges = "console.order.changes"

// Partition key = order id, so events for one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
