package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type riskDocument struct {
	ID                 string    `firestore:"id"`
	TenantID           string    `firestore:"tenant_id"`
	Title              string    `firestore:"title"`
	Description        string    `firestore:"description"`
	Taxonomy           []string  `firestore:"taxonomy"`
	Cause              string    `firestore:"cause"`
	Consequence        string    `firestore:"consequence"`
	OwnerID            *string   `firestore:"owner_id"`
	InherentLikelihood int       `firestore:"inherent_likelihood"`
	InherentImpact     int       `firestore:"inherent_impact"`
	ResidualLikelihood *int      `firestore:"residual_likelihood"`
	ResidualImpact     *int      `firestore:"residual_impact"`
	ResidualScore      *int      `firestore:"residual_score"`
	AppetiteThreshold  *float64  `firestore:"appetite_threshold"`
	AppetiteBreached   bool      `firestore:"appetite_breached"`
	Status             string    `firestore:"status"`
	KeyRisk            bool      `firestore:"key_risk"`
	Tags               []string  `firestore:"tags"`
	CreatedAt          time.Time `firestore:"created_at"`
	UpdatedAt          time.Time `firestore:"updated_at"`
}

func riskToDocument(r *model.Risk) *riskDocument {
	return &riskDocument{
		ID:                 r.ID,
		TenantID:           r.TenantID,
		Title:              r.Title,
		Description:        r.Description,
		Taxonomy:           r.Taxonomy,
		Cause:              r.Cause,
		Consequence:        r.Consequence,
		OwnerID:            r.OwnerID,
		InherentLikelihood: r.InherentLikelihood,
		InherentImpact:     r.InherentImpact,
		ResidualLikelihood: r.ResidualLikelihood,
		ResidualImpact:     r.ResidualImpact,
		ResidualScore:      r.ResidualScore,
		AppetiteThreshold:  r.AppetiteThreshold,
		AppetiteBreached:   r.AppetiteBreached,
		Status:             r.Status,
		KeyRisk:            r.KeyRisk,
		Tags:               r.Tags,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func (d *riskDocument) toModel() *model.Risk {
	return &model.Risk{
		ID:                 d.ID,
		TenantID:           d.TenantID,
		Title:              d.Title,
		Description:        d.Description,
		Taxonomy:           d.Taxonomy,
		Cause:              d.Cause,
		Consequence:        d.Consequence,
		OwnerID:            d.OwnerID,
		InherentLikelihood: d.InherentLikelihood,
		InherentImpact:     d.InherentImpact,
		ResidualLikelihood: d.ResidualLikelihood,
		ResidualImpact:     d.ResidualImpact,
		ResidualScore:      d.ResidualScore,
		AppetiteThreshold:  d.AppetiteThreshold,
		AppetiteBreached:   d.AppetiteBreached,
		Status:             d.Status,
		KeyRisk:            d.KeyRisk,
		Tags:               d.Tags,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type riskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRiskRepository(client *firestore.Client) *riskRepository {
	return &riskRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *riskRepository) risksCollection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, CollectionRisks))
}

// getRiskDoc decodes a risk snapshot and verifies it belongs to the tenant
func getRiskDoc(snap *firestore.DocumentSnapshot, tenantID, id string) (*riskDocument, error) {
	var doc riskDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode risk", goerr.V("id", id))
	}
	if doc.TenantID != tenantID {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
	}
	return &doc, nil
}

func (r *riskRepository) Create(ctx context.Context, tenantID string, risk *model.Risk) (*model.Risk, error) {
	now := time.Now().UTC()
	doc := riskToDocument(risk)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.TenantID = tenantID
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.risksCollection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V("id", doc.ID))
	}

	return doc.toModel(), nil
}

func (r *riskRepository) Get(ctx context.Context, tenantID, id string) (*model.Risk, error) {
	snap, err := r.risksCollection().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("id", id))
	}

	doc, err := getRiskDoc(snap, tenantID, id)
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *riskRepository) List(ctx context.Context, tenantID string) ([]*model.Risk, error) {
	iter := r.risksCollection().Where("tenant_id", "==", tenantID).Documents(ctx)
	defer iter.Stop()

	risks := make([]*model.Risk, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks", goerr.V("tenant_id", tenantID))
		}

		var doc riskDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode risk", goerr.V("doc_id", snap.Ref.ID))
		}
		risks = append(risks, doc.toModel())
	}

	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, tenantID string, risk *model.Risk) (*model.Risk, error) {
	ref := r.risksCollection().Doc(risk.ID)

	var updated *riskDocument
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "risk not found", goerr.V("tenant_id", tenantID), goerr.V("id", risk.ID))
			}
			return goerr.Wrap(err, "failed to get risk", goerr.V("id", risk.ID))
		}
		existing, err := getRiskDoc(snap, tenantID, risk.ID)
		if err != nil {
			return err
		}

		updated = riskToDocument(risk)
		updated.TenantID = tenantID
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		return tx.Set(ref, updated)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V("id", risk.ID))
	}

	return updated.toModel(), nil
}

func (r *riskRepository) UpdateResidual(ctx context.Context, tenantID, id string, update model.ResidualUpdate) (*model.Risk, error) {
	ref := r.risksCollection().Doc(id)

	var result *model.Risk
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "risk not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get risk", goerr.V("id", id))
		}
		doc, err := getRiskDoc(snap, tenantID, id)
		if err != nil {
			return err
		}

		result = doc.toModel()
		result.ApplyResidual(update)
		result.UpdatedAt = time.Now().UTC()

		return tx.Update(ref, []firestore.Update{
			{Path: "residual_likelihood", Value: result.ResidualLikelihood},
			{Path: "residual_impact", Value: result.ResidualImpact},
			{Path: "residual_score", Value: result.ResidualScore},
			{Path: "appetite_threshold", Value: result.AppetiteThreshold},
			{Path: "appetite_breached", Value: result.AppetiteBreached},
			{Path: "updated_at", Value: result.UpdatedAt},
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk residual", goerr.V("id", id))
	}

	return result, nil
}
