package firestore

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type ownerDocument struct {
	ID          string `firestore:"id"`
	TenantID    string `firestore:"tenant_id"`
	Email       string `firestore:"email"`
	EmailLower  string `firestore:"email_lower"`
	DisplayName string `firestore:"display_name"`
}

type ownerRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newOwnerRepository(client *firestore.Client) *ownerRepository {
	return &ownerRepository{client: client}
}

func (r *ownerRepository) ownersCollection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, CollectionOwners))
}

func (r *ownerRepository) Put(ctx context.Context, tenantID string, owner *model.Owner) error {
	doc := &ownerDocument{
		ID:          owner.ID,
		TenantID:    tenantID,
		Email:       owner.Email,
		EmailLower:  strings.ToLower(strings.TrimSpace(owner.Email)),
		DisplayName: owner.DisplayName,
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	if _, err := r.ownersCollection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put owner", goerr.V("id", doc.ID))
	}
	return nil
}

func (r *ownerRepository) FindByEmail(ctx context.Context, tenantID, email string) (*model.Owner, error) {
	iter := r.ownersCollection().
		Where("tenant_id", "==", tenantID).
		Where("email_lower", "==", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find owner by email")
	}

	var doc ownerDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode owner", goerr.V("doc_id", snap.Ref.ID))
	}
	return &model.Owner{
		ID:          doc.ID,
		TenantID:    doc.TenantID,
		Email:       doc.Email,
		DisplayName: doc.DisplayName,
	}, nil
}
