package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/interfaces"
)

// ErrNotFound is returned when a document does not exist for the tenant
var ErrNotFound = interfaces.ErrNotFound

// Collection names without prefix
const (
	CollectionRisks             = "risks"
	CollectionAssessments       = "assessments"
	CollectionTreatments        = "treatments"
	CollectionIndicators        = "indicators"
	CollectionIndicatorReadings = "indicator_readings"
	CollectionOwners            = "owners"
)

type Firestore struct {
	client     *firestore.Client
	risk       *riskRepository
	assessment *assessmentRepository
	treatment  *treatmentRepository
	indicator  *indicatorRepository
	owner      *ownerRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.risk.collectionPrefix = prefix
		f.assessment.collectionPrefix = prefix
		f.treatment.collectionPrefix = prefix
		f.indicator.collectionPrefix = prefix
		f.owner.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		risk:       newRiskRepository(client),
		assessment: newAssessmentRepository(client),
		treatment:  newTreatmentRepository(client),
		indicator:  newIndicatorRepository(client),
		owner:      newOwnerRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Risk() interfaces.RiskRepository {
	return f.risk
}

func (f *Firestore) Assessment() interfaces.AssessmentRepository {
	return f.assessment
}

func (f *Firestore) Treatment() interfaces.TreatmentRepository {
	return f.treatment
}

func (f *Firestore) Indicator() interfaces.IndicatorRepository {
	return f.indicator
}

func (f *Firestore) Owner() interfaces.OwnerRepository {
	return f.owner
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
