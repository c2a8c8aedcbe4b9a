package orders

import "strconv"

const (
	TopicOrderCreated  = "pizzabot.order.created"
	TopicStatusChanged = "pizzabot.order.status_changed"
	TopicOrdersPurged  = "pizzabot.order.purged"
)

// AllTopics is what the event log consumer subscribes to.
var AllTopics = []string{TopicOrderCreated, TopicStatusChanged, TopicOrdersPurged}

// Partition key = order_id, so every event of one order keeps its order.
func PartitionKey(orderID int64) []byte { return []byte(strconv.FormatInt(orderID, 10)) }
