package model

import (
	"time"

	"github.com/neonzero/OpenERM/pkg/domain/types"
)

// Treatment is a remediation plan for a Risk
type Treatment struct {
	ID        string
	TenantID  string
	RiskID    string
	Title     string
	OwnerID   *string
	DueDate   *time.Time
	Status    types.TreatmentStatus
	Tasks     []TreatmentTask
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TreatmentTask is a single step of a treatment. Status is a free-form label.
type TreatmentTask struct {
	ID      string
	Title   string
	Status  string
	DueDate *time.Time
}

// DefaultTaskStatus is applied to tasks created without a status
const DefaultTaskStatus = "Open"

// IsOverdue reports whether the treatment is past due at now and not yet verified
func (t *Treatment) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Status.IsTerminal()
}

// TaskIndex returns the position of the task with id, or -1
func (t *Treatment) TaskIndex(id string) int {
	for i := range t.Tasks {
		if t.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}
