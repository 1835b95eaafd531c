package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// TreatmentStatus represents the remediation workflow state of a treatment
type TreatmentStatus string

const (
	TreatmentStatusOpen        TreatmentStatus = "Open"
	TreatmentStatusInProgress  TreatmentStatus = "In Progress"
	TreatmentStatusImplemented TreatmentStatus = "Implemented"
	TreatmentStatusVerified    TreatmentStatus = "Verified"
)

// treatmentTransitions lists the permitted next states for each state.
// The workflow is forward only; reopening a treatment means creating a new one.
var treatmentTransitions = map[TreatmentStatus][]TreatmentStatus{
	TreatmentStatusOpen:        {TreatmentStatusInProgress},
	TreatmentStatusInProgress:  {TreatmentStatusImplemented},
	TreatmentStatusImplemented: {TreatmentStatusVerified},
	TreatmentStatusVerified:    {},
}

// AllTreatmentStatuses returns all valid treatment statuses in workflow order
func AllTreatmentStatuses() []TreatmentStatus {
	return []TreatmentStatus{
		TreatmentStatusOpen,
		TreatmentStatusInProgress,
		TreatmentStatusImplemented,
		TreatmentStatusVerified,
	}
}

// IsValid checks if the treatment status is valid
func (s TreatmentStatus) IsValid() bool {
	_, ok := treatmentTransitions[s]
	return ok
}

// IsTerminal reports whether no further transition is possible
func (s TreatmentStatus) IsTerminal() bool {
	next, ok := treatmentTransitions[s]
	return ok && len(next) == 0
}

// AllowedNext returns the states reachable from s in one step, excluding s itself
func (s TreatmentStatus) AllowedNext() []TreatmentStatus {
	next := treatmentTransitions[s]
	out := make([]TreatmentStatus, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo reports whether moving from s to next is permitted.
// Staying in the same state is always permitted for a valid state.
func (s TreatmentStatus) CanTransitionTo(next TreatmentStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range treatmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String returns the string representation of the treatment status
func (s TreatmentStatus) String() string {
	return string(s)
}

// ParseTreatmentStatus parses a string into a TreatmentStatus.
// Matching ignores case, and underscores or hyphens are read as spaces ("IN_PROGRESS").
func ParseTreatmentStatus(s string) (TreatmentStatus, error) {
	normalized := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s))
	for _, status := range AllTreatmentStatuses() {
		if strings.EqualFold(normalized, string(status)) {
			return status, nil
		}
	}
	return "", goerr.New("invalid treatment status", goerr.V("status", s))
}
