package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is the common not-found error of every repository backend
var ErrNotFound = goerr.New("not found")

// Repository defines the interface for data persistence
type Repository interface {
	Risk() RiskRepository
	Assessment() AssessmentRepository
	Treatment() TreatmentRepository
	Indicator() IndicatorRepository
	Owner() OwnerRepository

	Close() error
}
