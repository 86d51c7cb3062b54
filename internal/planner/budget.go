package planner

import "time"

// TotalBudget is the whole-plan time budget.
const TotalBudget = 55 * time.Second

// budgetSafetyMargin is added on top of a call's own timeout before
// deciding whether there's room left to make it: timeLeft() must be >=
// the call's own timeout plus this margin.
const budgetSafetyMargin = 2500 * time.Millisecond

// Budget tracks the remaining time in one plan invocation.
type Budget struct {
	deadline time.Time
}

// NewBudget starts a budget counting down from now.
func NewBudget() *Budget {
	return &Budget{deadline: time.Now().Add(TotalBudget)}
}

// TimeLeft returns the time remaining until the budget's deadline.
func (b *Budget) TimeLeft() time.Duration {
	return time.Until(b.deadline)
}

// CanAfford reports whether there is enough time left to make a call
// with the given timeout and still leave the safety margin.
func (b *Budget) CanAfford(callTimeout time.Duration) bool {
	return b.TimeLeft() >= callTimeout+budgetSafetyMargin
}
