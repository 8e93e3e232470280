package subscription

import (
	"time"

	"github.com/google/uuid"
)

type Subscription struct {
	id        uuid.UUID
	userID    uuid.UUID
	planType  string
	sessionID string
	status    PaymentStatus
	startDate *time.Time
	endDate   *time.Time
	autoRenew bool
	createdAt time.Time
}

// New opens an initiated subscription awaiting payment reconciliation.
func New(userID uuid.UUID, planType, sessionID string) *Subscription {
	return &Subscription{
		id:        uuid.New(),
		userID:    userID,
		planType:  planType,
		sessionID: sessionID,
		status:    StatusInitiated,
		autoRenew: true,
	}
}

func Reconstruct(
	id, userID uuid.UUID,
	planType, sessionID string,
	status PaymentStatus,
	startDate, endDate *time.Time,
	autoRenew bool,
	createdAt time.Time,
) *Subscription {
	return &Subscription{
		id:        id,
		userID:    userID,
		planType:  planType,
		sessionID: sessionID,
		status:    status,
		startDate: startDate,
		endDate:   endDate,
		autoRenew: autoRenew,
		createdAt: createdAt,
	}
}

// ActiveAt reports whether this subscription grants entitlement at t: paid
// and not yet past its end date.
func (s *Subscription) ActiveAt(t time.Time) bool {
	return s.status == StatusPaid && s.endDate != nil && s.endDate.After(t)
}

func (s *Subscription) ID() uuid.UUID         { return s.id }
func (s *Subscription) UserID() uuid.UUID     { return s.userID }
func (s *Subscription) PlanType() string      { return s.planType }
func (s *Subscription) SessionID() string     { return s.sessionID }
func (s *Subscription) Status() PaymentStatus { return s.status }
func (s *Subscription) StartDate() *time.Time { return s.startDate }
func (s *Subscription) EndDate() *time.Time   { return s.endDate }
func (s *Subscription) AutoRenew() bool       { return s.autoRenew }
func (s *Subscription) CreatedAt() time.Time  { return s.createdAt }
