package subscription

type PaymentStatus string

const (
	StatusInitiated PaymentStatus = "initiated"
	StatusPaid      PaymentStatus = "paid"
	StatusFailed    PaymentStatus = "failed"
	StatusCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) String() string {
	return string(s)
}
