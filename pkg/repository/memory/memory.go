package memory

import (
	"github.com/neonzero/OpenERM/pkg/domain/interfaces"
)

// ErrNotFound is returned when a record does not exist for the tenant
var ErrNotFound = interfaces.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	risk       *riskRepository
	assessment *assessmentRepository
	treatment  *treatmentRepository
	indicator  *indicatorRepository
	owner      *ownerRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		risk:       newRiskRepository(),
		assessment: newAssessmentRepository(),
		treatment:  newTreatmentRepository(),
		indicator:  newIndicatorRepository(),
		owner:      newOwnerRepository(),
	}
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) Assessment() interfaces.AssessmentRepository {
	return m.assessment
}

func (m *Memory) Treatment() interfaces.TreatmentRepository {
	return m.treatment
}

func (m *Memory) Indicator() interfaces.IndicatorRepository {
	return m.indicator
}

func (m *Memory) Owner() interfaces.OwnerRepository {
	return m.owner
}

// Close is a no-op; the memory backend holds no external resources
func (m *Memory) Close() error {
	return nil
}
