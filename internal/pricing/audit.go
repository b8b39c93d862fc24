package pricing

import "fmt"

// auditTrail accumulates the ordered formula steps of one calculation.
// It is produced on success and on failure alike; a failed calculation
// carries the steps completed before the failure.
type auditTrail struct {
	steps []AuditStep
}

// add records one arithmetic step. Formula arguments are rendered with
// fmt.Sprintf so the trail reads as the actual numbers used.
func (a *auditTrail) add(label, formula string, args []any, value float64) {
	a.steps = append(a.steps, AuditStep{
		Step:    len(a.steps) + 1,
		Label:   label,
		Formula: fmt.Sprintf(formula, args...),
		Value:   value,
	})
}

// note records a non-arithmetic remark (fallbacks, tie-breaks) with no value.
func (a *auditTrail) note(label, text string) {
	a.steps = append(a.steps, AuditStep{
		Step:    len(a.steps) + 1,
		Label:   label,
		Formula: text,
	})
}
