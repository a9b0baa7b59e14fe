package order

type Status string

const (
	// StatusPending covers the window between order creation and payment
	// proof submission; only pending orders are subject to expiry.
	StatusPending      Status = "pending"
	StatusWaitingAdmin Status = "waiting_admin"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusWaitingAdmin, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the order has been adjudicated.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}
