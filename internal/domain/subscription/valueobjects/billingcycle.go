package valueobjects

import (
	"fmt"
	"time"
)

// BillingCycle is the subscription billing period.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleAnnual  BillingCycle = "annual"
)

// NewBillingCycle validates and returns a billing cycle.
func NewBillingCycle(value string) (BillingCycle, error) {
	switch BillingCycle(value) {
	case BillingCycleMonthly, BillingCycleAnnual:
		return BillingCycle(value), nil
	}
	return "", fmt.Errorf("invalid billing cycle: %s", value)
}

func (b BillingCycle) String() string {
	return string(b)
}

// NextPeriodEnd returns the period end following from in this cycle.
func (b BillingCycle) NextPeriodEnd(from time.Time) time.Time {
	switch b {
	case BillingCycleAnnual:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}
