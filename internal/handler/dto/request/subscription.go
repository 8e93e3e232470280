package request

type CreateSubscriptionCheckoutRequest struct {
	PlanType string `json:"plan_type" binding:"required"`
}
