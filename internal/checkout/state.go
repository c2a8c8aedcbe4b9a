package checkout

type State string

const (
	Idle              State = "idle"
	WaitingForAddress State = "waiting_for_address"
	WaitingForPhone   State = "waiting_for_phone"
	WaitingForPayment State = "waiting_for_payment"
	WaitingForReceipt State = "waiting_for_receipt"
)

type input int

const (
	onStart input = iota
	onAddress
	onPhone
	onCashPayment
	onOnlinePayment
	onReceipt
)

func (i input) String() string {
	switch i {
	case onStart:
		return "start"
	case onAddress:
		return "address"
	case onPhone:
		return "phone"
	case onCashPayment:
		return "cash payment"
	case onOnlinePayment:
		return "online payment"
	case onReceipt:
		return "receipt"
	}
	return "unknown"
}

type transition struct {
	from State
	on   input
	to   State
}

// transitions is the whole conversation. Start is accepted anywhere and
// restarts from the address step.
var transitions = []transition{
	{Idle, onStart, WaitingForAddress},
	{WaitingForAddress, onStart, WaitingForAddress},
	{WaitingForPhone, onStart, WaitingForAddress},
	{WaitingForPayment, onStart, WaitingForAddress},
	{WaitingForReceipt, onStart, WaitingForAddress},

	{WaitingForAddress, onAddress, WaitingForPhone},
	{WaitingForPhone, onPhone, WaitingForPayment},
	{WaitingForPayment, onCashPayment, Idle},
	{WaitingForPayment, onOnlinePayment, WaitingForReceipt},
	{WaitingForReceipt, onReceipt, Idle},
}

func next(from State, on input) (State, bool) {
	for _, t := range transitions {
		if t.from == from && t.on == on {
			return t.to, true
		}
	}
	return from, false
}

// Accepts reports whether a session in state s takes free text, a shared
// contact or media as input.
func (s State) Accepts() bool {
	switch s {
	case WaitingForAddress, WaitingForPhone, WaitingForReceipt:
		return true
	}
	return false
}
