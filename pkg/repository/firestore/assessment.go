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
)

type assessmentDocument struct {
	ID                 string     `firestore:"id"`
	TenantID           string     `firestore:"tenant_id"`
	RiskID             string     `firestore:"risk_id"`
	Method             string     `firestore:"method"`
	Likelihood         int        `firestore:"likelihood"`
	Impact             int        `firestore:"impact"`
	ResidualLikelihood *int       `firestore:"residual_likelihood"`
	ResidualImpact     *int       `firestore:"residual_impact"`
	Velocity           *int       `firestore:"velocity"`
	AppetiteThreshold  *float64   `firestore:"appetite_threshold"`
	ResidualScore      int        `firestore:"residual_score"`
	MatrixBucket       string     `firestore:"matrix_bucket"`
	ReviewerID         *string    `firestore:"reviewer_id"`
	ApprovedAt         *time.Time `firestore:"approved_at"`
	Notes              string     `firestore:"notes"`
	CreatedAt          time.Time  `firestore:"created_at"`
}

func (d *assessmentDocument) toModel() *model.Assessment {
	return &model.Assessment{
		ID:       d.ID,
		TenantID: d.TenantID,
		RiskID:   d.RiskID,
		Method:   types.AssessmentMethod(d.Method),
		Scores: model.AssessmentScores{
			Likelihood:         d.Likelihood,
			Impact:             d.Impact,
			ResidualLikelihood: d.ResidualLikelihood,
			ResidualImpact:     d.ResidualImpact,
			Velocity:           d.Velocity,
			AppetiteThreshold:  d.AppetiteThreshold,
		},
		ResidualScore: d.ResidualScore,
		MatrixBucket:  d.MatrixBucket,
		ReviewerID:    d.ReviewerID,
		ApprovedAt:    d.ApprovedAt,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt,
	}
}

type assessmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAssessmentRepository(client *firestore.Client) *assessmentRepository {
	return &assessmentRepository{client: client}
}

func (r *assessmentRepository) assessmentsCollection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, CollectionAssessments))
}

func (r *assessmentRepository) Create(ctx context.Context, tenantID string, a *model.Assessment) (*model.Assessment, error) {
	doc := &assessmentDocument{
		ID:                 a.ID,
		TenantID:           tenantID,
		RiskID:             a.RiskID,
		Method:             a.Method.String(),
		Likelihood:         a.Scores.Likelihood,
		Impact:             a.Scores.Impact,
		ResidualLikelihood: a.Scores.ResidualLikelihood,
		ResidualImpact:     a.Scores.ResidualImpact,
		Velocity:           a.Scores.Velocity,
		AppetiteThreshold:  a.Scores.AppetiteThreshold,
		ResidualScore:      a.ResidualScore,
		MatrixBucket:       a.MatrixBucket,
		ReviewerID:         a.ReviewerID,
		ApprovedAt:         a.ApprovedAt,
		Notes:              a.Notes,
		CreatedAt:          a.CreatedAt,
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if _, err := r.assessmentsCollection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create assessment", goerr.V("id", doc.ID))
	}
	return doc.toModel(), nil
}

func (r *assessmentRepository) ListByRisk(ctx context.Context, tenantID, riskID string) ([]*model.Assessment, error) {
	iter := r.assessmentsCollection().
		Where("tenant_id", "==", tenantID).
		Where("risk_id", "==", riskID).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.Assessment, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate assessments", goerr.V("risk_id", riskID))
		}

		var doc assessmentDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode assessment", goerr.V("doc_id", snap.Ref.ID))
		}
		result = append(result, doc.toModel())
	}
	return result, nil
}
