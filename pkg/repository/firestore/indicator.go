package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type indicatorDocument struct {
	ID               string     `firestore:"id"`
	TenantID         string     `firestore:"tenant_id"`
	RiskID           string     `firestore:"risk_id"`
	Name             string     `firestore:"name"`
	Direction        string     `firestore:"direction"`
	Threshold        *float64   `firestore:"threshold"`
	Unit             string     `firestore:"unit"`
	Cadence          string     `firestore:"cadence"`
	LatestValue      *float64   `firestore:"latest_value"`
	LatestRecordedAt *time.Time `firestore:"latest_recorded_at"`
	Breached         bool       `firestore:"breached"`
	CreatedAt        time.Time  `firestore:"created_at"`
	UpdatedAt        time.Time  `firestore:"updated_at"`
}

func indicatorToDocument(ind *model.Indicator) *indicatorDocument {
	return &indicatorDocument{
		ID:               ind.ID,
		TenantID:         ind.TenantID,
		RiskID:           ind.RiskID,
		Name:             ind.Name,
		Direction:        ind.Direction.String(),
		Threshold:        ind.Threshold,
		Unit:             ind.Unit,
		Cadence:          ind.Cadence,
		LatestValue:      ind.LatestValue,
		LatestRecordedAt: ind.LatestRecordedAt,
		Breached:         ind.Breached,
		CreatedAt:        ind.CreatedAt,
		UpdatedAt:        ind.UpdatedAt,
	}
}

func (d *indicatorDocument) toModel() *model.Indicator {
	return &model.Indicator{
		ID:               d.ID,
		TenantID:         d.TenantID,
		RiskID:           d.RiskID,
		Name:             d.Name,
		Direction:        types.IndicatorDirection(d.Direction),
		Threshold:        d.Threshold,
		Unit:             d.Unit,
		Cadence:          d.Cadence,
		LatestValue:      d.LatestValue,
		LatestRecordedAt: d.LatestRecordedAt,
		Breached:         d.Breached,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

type readingDocument struct {
	ID          string    `firestore:"id"`
	TenantID    string    `firestore:"tenant_id"`
	IndicatorID string    `firestore:"indicator_id"`
	Value       float64   `firestore:"value"`
	RecordedAt  time.Time `firestore:"recorded_at"`
	Breached    bool      `firestore:"breached"`
}

func (d *readingDocument) toModel() *model.IndicatorReading {
	return &model.IndicatorReading{
		ID:          d.ID,
		IndicatorID: d.IndicatorID,
		Value:       d.Value,
		RecordedAt:  d.RecordedAt,
		Breached:    d.Breached,
	}
}

type indicatorRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newIndicatorRepository(client *firestore.Client) *indicatorRepository {
	return &indicatorRepository{client: client}
}

func (r *indicatorRepository) indicatorsCollection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, CollectionIndicators))
}

func (r *indicatorRepository) readingsCollection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, CollectionIndicatorReadings))
}

func (r *indicatorRepository) Create(ctx context.Context, tenantID string, ind *model.Indicator) (*model.Indicator, error) {
	now := time.Now().UTC()
	doc := indicatorToDocument(ind)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.TenantID = tenantID
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.indicatorsCollection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create indicator", goerr.V("id", doc.ID))
	}
	return doc.toModel(), nil
}

func (r *indicatorRepository) get(ctx context.Context, tenantID, id string) (*indicatorDocument, error) {
	snap, err := r.indicatorsCollection().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "indicator not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get indicator", goerr.V("id", id))
	}

	var doc indicatorDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode indicator", goerr.V("id", id))
	}
	if doc.TenantID != tenantID {
		return nil, goerr.Wrap(ErrNotFound, "indicator not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
	}
	return &doc, nil
}

func (r *indicatorRepository) Get(ctx context.Context, tenantID, id string) (*model.Indicator, error) {
	doc, err := r.get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *indicatorRepository) Update(ctx context.Context, tenantID string, ind *model.Indicator) (*model.Indicator, error) {
	existing, err := r.get(ctx, tenantID, ind.ID)
	if err != nil {
		return nil, err
	}

	doc := indicatorToDocument(ind)
	doc.TenantID = tenantID
	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = time.Now().UTC()

	if _, err := r.indicatorsCollection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update indicator", goerr.V("id", doc.ID))
	}
	return doc.toModel(), nil
}

func (r *indicatorRepository) ListByRisk(ctx context.Context, tenantID, riskID string) ([]*model.Indicator, error) {
	iter := r.indicatorsCollection().
		Where("tenant_id", "==", tenantID).
		Where("risk_id", "==", riskID).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.Indicator, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate indicators", goerr.V("risk_id", riskID))
		}

		var doc indicatorDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode indicator", goerr.V("doc_id", snap.Ref.ID))
		}
		result = append(result, doc.toModel())
	}
	return result, nil
}

func (r *indicatorRepository) AddReading(ctx context.Context, tenantID string, reading *model.IndicatorReading) (*model.IndicatorReading, error) {
	if _, err := r.get(ctx, tenantID, reading.IndicatorID); err != nil {
		return nil, err
	}

	doc := &readingDocument{
		ID:          reading.ID,
		TenantID:    tenantID,
		IndicatorID: reading.IndicatorID,
		Value:       reading.Value,
		RecordedAt:  reading.RecordedAt,
		Breached:    reading.Breached,
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.RecordedAt.IsZero() {
		doc.RecordedAt = time.Now().UTC()
	}

	if _, err := r.readingsCollection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to add indicator reading", goerr.V("indicator_id", doc.IndicatorID))
	}
	return doc.toModel(), nil
}

func (r *indicatorRepository) ListReadings(ctx context.Context, tenantID, indicatorID string, since time.Time) ([]*model.IndicatorReading, error) {
	iter := r.readingsCollection().
		Where("tenant_id", "==", tenantID).
		Where("indicator_id", "==", indicatorID).
		Where("recorded_at", ">=", since).
		OrderBy("recorded_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.IndicatorReading, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate indicator readings", goerr.V("indicator_id", indicatorID))
		}

		var doc readingDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode indicator reading", goerr.V("doc_id", snap.Ref.ID))
		}
		result = append(result, doc.toModel())
	}
	return result, nil
}
