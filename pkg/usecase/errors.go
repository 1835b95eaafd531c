package usecase

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/interfaces"
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrRiskNotFound      = goerr.New("risk not found")
	ErrTreatmentNotFound = goerr.New("treatment not found")
	ErrIndicatorNotFound = goerr.New("indicator not found")

	// Workflow errors
	ErrInvalidTransition = goerr.New("invalid treatment status transition")

	// Input errors
	ErrValidation = goerr.New("validation failed")
)

// Context keys for error values
const (
	TenantIDKey    = "tenant_id"
	RiskIDKey      = "risk_id"
	TreatmentIDKey = "treatment_id"
	IndicatorIDKey = "indicator_id"
	FieldKey       = "field"

	// AllowedStatusesKey lists the statuses a treatment may move to when a transition is rejected
	AllowedStatusesKey = "allowed_statuses"
)

// IsNotFound reports whether err belongs to the not-found class
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRiskNotFound) ||
		errors.Is(err, ErrTreatmentNotFound) ||
		errors.Is(err, ErrIndicatorNotFound) ||
		errors.Is(err, interfaces.ErrNotFound)
}

// notFoundOr maps a repository not-found error onto sentinel and wraps any other error
func notFoundOr(err, sentinel error, msg, key, id string) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(sentinel, msg, goerr.V(key, id))
	}
	return goerr.Wrap(err, "failed to get "+key, goerr.V(key, id))
}

func validationError(msg, field string, value any) error {
	return goerr.Wrap(ErrValidation, msg, goerr.V(FieldKey, field), goerr.V("value", value))
}
