package job

import (
	"fmt"

	"farmlink/internal/common"
)

// ValidateWageChange decides whether the owner may set the job's wage to
// proposedWage. Once any application exists for the job, whatever its status,
// the wage those workers applied against may not change; writing the current
// value back is an allowed no-op. This is the single gate for wage writes —
// the write path carries no enforcement of its own.
func ValidateWageChange(currentWage, proposedWage int64, applicationCount int) error {
	if proposedWage <= 0 {
		return common.NewValidationError("invalid wage", map[string]string{"wage": "wage must be positive"})
	}
	if applicationCount == 0 {
		return nil
	}
	if proposedWage == currentWage {
		return nil
	}
	return common.NewError(common.CodeWageLocked,
		fmt.Sprintf("wage is locked because %d workers already applied against the original amount", applicationCount), nil)
}

// ValidateRequiredWorkers decides whether the owner may change the opening
// count. The advertised-opening rule (no shrink below originalCount once
// anyone applied) is stricter than the accepted-count rule and is reported
// when both would fire.
func ValidateRequiredWorkers(newCount, acceptedCount, applicationCount, originalCount int) error {
	if newCount < 1 {
		return common.NewValidationError("invalid required workers", map[string]string{"required_workers": "required workers must be at least 1"})
	}
	if applicationCount > 0 && newCount < originalCount {
		return common.NewError(common.CodeValidation,
			fmt.Sprintf("cannot shrink the opening below the advertised %d: %d workers already applied", originalCount, applicationCount), nil)
	}
	if newCount < acceptedCount {
		return common.NewError(common.CodeValidation,
			fmt.Sprintf("cannot set required workers below the %d already accepted", acceptedCount), nil)
	}
	return nil
}

// DeriveStatus returns the status the job should carry given its acceptance
// state. Completed is terminal; in-progress is a farmer-chosen state that
// suppresses derivation until the farmer leaves it; otherwise the job is
// filled exactly when every opening is taken.
func DeriveStatus(current Status, acceptedCount, requiredWorkers int) Status {
	switch current {
	case StatusCompleted, StatusInProgress:
		return current
	}
	if acceptedCount >= requiredWorkers {
		return StatusFilled
	}
	return StatusOpen
}
