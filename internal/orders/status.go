package orders

import "fmt"

type Status string

const (
	StatusNew       Status = "new"
	StatusCooking   Status = "cooking"
	StatusDelivery  Status = "delivery"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
)

// validNext lists targets in the order the operator sees them.
var validNext = map[Status][]Status{
	StatusNew:       {StatusCooking, StatusCancelled},
	StatusCooking:   {StatusDelivery, StatusDone, StatusCancelled},
	StatusDelivery:  {StatusDone, StatusCancelled},
	StatusDone:      {},
	StatusCancelled: {},
}

// TerminalStatuses are eligible for the retention sweep.
var TerminalStatuses = []Status{StatusDone, StatusCancelled}

func CanTransition(from, to Status) bool {
	for _, s := range validNext[from] {
		if s == to {
			return true
		}
	}
	return false
}

func Allowed(from Status) []Status {
	return append([]Status(nil), validNext[from]...)
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := validNext[st]; !ok {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

func (s Status) Terminal() bool { return s == StatusDone || s == StatusCancelled }

func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "🆕 New"
	case StatusCooking:
		return "🍳 Cooking"
	case StatusDelivery:
		return "🚚 Out for delivery"
	case StatusDone:
		return "✅ Done"
	case StatusCancelled:
		return "❌ Cancelled"
	}
	return string(s)
}

func (s Status) Emoji() string {
	switch s {
	case StatusNew:
		return "🆕"
	case StatusCooking:
		return "🍳"
	case StatusDelivery:
		return "🚚"
	case StatusDone:
		return "✅"
	case StatusCancelled:
		return "❌"
	}
	return "❓"
}

// PaymentLabel renders a stored payment_method value for people.
func PaymentLabel(method string) string {
	switch method {
	case "online":
		return "💳 Online transfer"
	case "cash":
		return "💵 Cash"
	}
	return method
}
