package subscription

import (
	"errors"
	"time"
)

var ErrUnknownPlan = errors.New("unknown plan type")

// Plan is an entry of the fixed price/duration table. Basic is the free
// default and never appears here.
type Plan struct {
	Type        string
	Name        string
	AmountCents int64
	Currency    string
	Duration    time.Duration
}

const (
	PlanBasic   = "basic"
	PlanPremium = "premium"
)

var plans = map[string]Plan{
	PlanPremium: {
		Type:        PlanPremium,
		Name:        "Premium Plan",
		AmountCents: 2999,
		Currency:    "usd",
		Duration:    365 * 24 * time.Hour,
	},
}

func PlanByType(planType string) (Plan, error) {
	p, ok := plans[planType]
	if !ok {
		return Plan{}, ErrUnknownPlan
	}
	return p, nil
}
