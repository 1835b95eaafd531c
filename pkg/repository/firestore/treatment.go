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

type treatmentTaskDocument struct {
	ID      string     `firestore:"id"`
	Title   string     `firestore:"title"`
	Status  string     `firestore:"status"`
	DueDate *time.Time `firestore:"due_date"`
}

type treatmentDocument struct {
	ID        string                  `firestore:"id"`
	TenantID  string                  `firestore:"tenant_id"`
	RiskID    string                  `firestore:"risk_id"`
	Title     string                  `firestore:"title"`
	OwnerID   *string                 `firestore:"owner_id"`
	DueDate   *time.Time              `firestore:"due_date"`
	Status    string                  `firestore:"status"`
	Tasks     []treatmentTaskDocument `firestore:"tasks"`
	CreatedAt time.Time               `firestore:"created_at"`
	UpdatedAt time.Time               `firestore:"updated_at"`
}

func treatmentToDocument(t *model.Treatment) *treatmentDocument {
	doc := &treatmentDocument{
		ID:        t.ID,
		TenantID:  t.TenantID,
		RiskID:    t.RiskID,
		Title:     t.Title,
		OwnerID:   t.OwnerID,
		DueDate:   t.DueDate,
		Status:    t.Status.String(),
		Tasks:     make([]treatmentTaskDocument, 0, len(t.Tasks)),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	for _, task := range t.Tasks {
		doc.Tasks = append(doc.Tasks, treatmentTaskDocument(task))
	}
	return doc
}

func (d *treatmentDocument) toModel() *model.Treatment {
	t := &model.Treatment{
		ID:        d.ID,
		TenantID:  d.TenantID,
		RiskID:    d.RiskID,
		Title:     d.Title,
		OwnerID:   d.OwnerID,
		DueDate:   d.DueDate,
		Status:    types.TreatmentStatus(d.Status),
		Tasks:     make([]model.TreatmentTask, 0, len(d.Tasks)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, task := range d.Tasks {
		t.Tasks = append(t.Tasks, model.TreatmentTask(task))
	}
	return t
}

type treatmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTreatmentRepository(client *firestore.Client) *treatmentRepository {
	return &treatmentRepository{client: client}
}

func (r *treatmentRepository) treatmentsCollection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, CollectionTreatments))
}

func (r *treatmentRepository) Create(ctx context.Context, tenantID string, t *model.Treatment) (*model.Treatment, error) {
	now := time.Now().UTC()
	doc := treatmentToDocument(t)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	for i := range doc.Tasks {
		if doc.Tasks[i].ID == "" {
			doc.Tasks[i].ID = uuid.NewString()
		}
	}
	doc.TenantID = tenantID
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.treatmentsCollection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create treatment", goerr.V("id", doc.ID))
	}
	return doc.toModel(), nil
}

func (r *treatmentRepository) get(ctx context.Context, tenantID, id string) (*treatmentDocument, error) {
	snap, err := r.treatmentsCollection().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "treatment not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get treatment", goerr.V("id", id))
	}

	var doc treatmentDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode treatment", goerr.V("id", id))
	}
	if doc.TenantID != tenantID {
		return nil, goerr.Wrap(ErrNotFound, "treatment not found", goerr.V("tenant_id", tenantID), goerr.V("id", id))
	}
	return &doc, nil
}

func (r *treatmentRepository) Get(ctx context.Context, tenantID, id string) (*model.Treatment, error) {
	doc, err := r.get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *treatmentRepository) list(ctx context.Context, query firestore.Query) ([]*model.Treatment, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	result := make([]*model.Treatment, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate treatments")
		}

		var doc treatmentDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode treatment", goerr.V("doc_id", snap.Ref.ID))
		}
		result = append(result, doc.toModel())
	}
	return result, nil
}

func (r *treatmentRepository) List(ctx context.Context, tenantID string) ([]*model.Treatment, error) {
	return r.list(ctx, r.treatmentsCollection().Where("tenant_id", "==", tenantID))
}

func (r *treatmentRepository) ListByRisk(ctx context.Context, tenantID, riskID string) ([]*model.Treatment, error) {
	return r.list(ctx, r.treatmentsCollection().
		Where("tenant_id", "==", tenantID).
		Where("risk_id", "==", riskID))
}

func (r *treatmentRepository) Update(ctx context.Context, tenantID string, t *model.Treatment) (*model.Treatment, error) {
	existing, err := r.get(ctx, tenantID, t.ID)
	if err != nil {
		return nil, err
	}

	doc := treatmentToDocument(t)
	doc.TenantID = tenantID
	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = time.Now().UTC()

	if _, err := r.treatmentsCollection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to update treatment", goerr.V("id", doc.ID))
	}
	return doc.toModel(), nil
}
