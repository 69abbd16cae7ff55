package manufacturing

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntryType distinguishes how a workflow history entry was produced
type HistoryEntryType string

const (
	EntryTypeCreated       HistoryEntryType = "CREATED"
	EntryTypeTransition    HistoryEntryType = "TRANSITION"
	EntryTypeQualityCheck  HistoryEntryType = "QUALITY_CHECK"
	EntryTypeFinalApproval HistoryEntryType = "FINAL_APPROVAL"
)

// IsValid checks if the entry type is a valid HistoryEntryType
func (t HistoryEntryType) IsValid() bool {
	switch t {
	case EntryTypeCreated, EntryTypeTransition, EntryTypeQualityCheck, EntryTypeFinalApproval:
		return true
	}
	return false
}

// WorkflowHistoryEntry is the immutable audit trail of a manufacturing
// record: one row per creation, transition, quality check or approval.
// Entries are append-only and never mutated or deleted.
type WorkflowHistoryEntry struct {
	ID         uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	RecordID   uuid.UUID            `gorm:"type:uuid;not null;index" json:"record_id"`
	FromStatus *ManufacturingStatus `gorm:"type:varchar(20)" json:"from_status"` // nil for the creation entry
	ToStatus   ManufacturingStatus  `gorm:"type:varchar(20);not null" json:"to_status"`
	EntryType  HistoryEntryType     `gorm:"type:varchar(20);not null" json:"entry_type"`
	UserID     uuid.UUID            `gorm:"type:uuid;not null" json:"user_id"`
	UserName   string               `gorm:"type:varchar(100);not null" json:"user_name"`
	Notes      string               `gorm:"type:varchar(1000)" json:"notes"`
	CreatedAt  time.Time            `gorm:"not null;index" json:"created_at"`
}

// TableName returns the table name for GORM
func (WorkflowHistoryEntry) TableName() string {
	return "workflow_history_entries"
}

// newHistoryEntry builds an entry; only the record aggregate creates these
func newHistoryEntry(recordID uuid.UUID, from *ManufacturingStatus, to ManufacturingStatus, entryType HistoryEntryType, actor Actor, notes string) WorkflowHistoryEntry {
	return WorkflowHistoryEntry{
		ID:         uuid.New(),
		RecordID:   recordID,
		FromStatus: from,
		ToStatus:   to,
		EntryType:  entryType,
		UserID:     actor.UserID,
		UserName:   actor.UserName,
		Notes:      notes,
		CreatedAt:  time.Now(),
	}
}

// Actor identifies the user performing a workflow mutation
type Actor struct {
	UserID   uuid.UUID
	UserName string
}
