package manufacturing

// ManufacturingStatus represents the workflow status of a manufacturing record
type ManufacturingStatus string

const (
	StatusDraft         ManufacturingStatus = "DRAFT"
	StatusInProgress    ManufacturingStatus = "IN_PROGRESS"
	StatusQualityCheck  ManufacturingStatus = "QUALITY_CHECK"
	StatusFinalApproval ManufacturingStatus = "FINAL_APPROVAL"
	StatusCompleted     ManufacturingStatus = "COMPLETED"
	StatusCancelled     ManufacturingStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ManufacturingStatus
func (s ManufacturingStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusQualityCheck,
		StatusFinalApproval, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ManufacturingStatus
func (s ManufacturingStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are possible
func (s ManufacturingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s ManufacturingStatus) CanTransitionTo(target ManufacturingStatus) bool {
	switch s {
	case StatusDraft:
		return target == StatusInProgress || target == StatusCancelled
	case StatusInProgress:
		return target == StatusQualityCheck || target == StatusCancelled
	case StatusQualityCheck:
		// Pass moves forward, fail routes back for rework
		return target == StatusFinalApproval || target == StatusInProgress || target == StatusCancelled
	case StatusFinalApproval:
		// Rejection sends the batch back through quality check
		return target == StatusCompleted || target == StatusQualityCheck || target == StatusCancelled
	case StatusCompleted, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// AvailableTransitions returns the ordered set of legal target statuses
func (s ManufacturingStatus) AvailableTransitions() []ManufacturingStatus {
	switch s {
	case StatusDraft:
		return []ManufacturingStatus{StatusInProgress, StatusCancelled}
	case StatusInProgress:
		return []ManufacturingStatus{StatusQualityCheck, StatusCancelled}
	case StatusQualityCheck:
		return []ManufacturingStatus{StatusFinalApproval, StatusInProgress, StatusCancelled}
	case StatusFinalApproval:
		return []ManufacturingStatus{StatusCompleted, StatusQualityCheck, StatusCancelled}
	}
	return nil
}

// IsPreProduction returns true while the record may still be deleted.
// Deletion is only allowed before the batch reaches quality control.
func (s ManufacturingStatus) IsPreProduction() bool {
	return s == StatusDraft || s == StatusInProgress
}

// Priority indicates the urgency of a manufacturing batch.
// Informational only - it never affects transition legality.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid checks if the priority is a valid Priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// String returns the string representation of Priority
func (p Priority) String() string {
	return string(p)
}
