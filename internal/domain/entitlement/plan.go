package entitlement

import (
	"fmt"
	"time"
)

// Plan represents a purchasable entitlement tier.
type Plan string

const (
	PlanWeekly   Plan = "weekly"
	PlanMonthly  Plan = "monthly"
	PlanSemester Plan = "semester"
)

var planDurations = map[Plan]time.Duration{
	PlanWeekly:   7 * 24 * time.Hour,
	PlanMonthly:  30 * 24 * time.Hour,
	PlanSemester: 120 * 24 * time.Hour,
}

// Prices are stored in minor units (cents) to avoid float arithmetic.
var planPrices = map[Plan]uint64{
	PlanWeekly:   1000,
	PlanMonthly:  2500,
	PlanSemester: 5000,
}

// ParsePlan validates a raw plan string.
func ParsePlan(raw string) (Plan, error) {
	p := Plan(raw)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid plan: %s", raw)
	}
	return p, nil
}

func (p Plan) IsValid() bool {
	_, ok := planDurations[p]
	return ok
}

func (p Plan) String() string {
	return string(p)
}

// Duration returns how long an access key issued against this plan lasts.
func (p Plan) Duration() time.Duration {
	return planDurations[p]
}

// PriceCents returns the expected payment amount in minor units.
func (p Plan) PriceCents() uint64 {
	return planPrices[p]
}

// ExpiryFrom computes the expiration timestamp for a key issued at the
// given time.
func (p Plan) ExpiryFrom(issuedAt time.Time) time.Time {
	return issuedAt.Add(p.Duration())
}

// AllPlans returns the plan tiers in ascending price order.
func AllPlans() []Plan {
	return []Plan{PlanWeekly, PlanMonthly, PlanSemester}
}
