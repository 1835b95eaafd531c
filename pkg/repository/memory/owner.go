package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/neonzero/OpenERM/pkg/domain/model"
)

type ownerRepository struct {
	mu     sync.RWMutex
	owners map[string]map[string]*model.Owner
}

func newOwnerRepository() *ownerRepository {
	return &ownerRepository{
		owners: make(map[string]map[string]*model.Owner),
	}
}

func (r *ownerRepository) Put(ctx context.Context, tenantID string, owner *model.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.owners[tenantID]; !exists {
		r.owners[tenantID] = make(map[string]*model.Owner)
	}

	stored := *owner
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.TenantID = tenantID
	r.owners[tenantID][stored.ID] = &stored
	return nil
}

func (r *ownerRepository) FindByEmail(ctx context.Context, tenantID, email string) (*model.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.TrimSpace(email)
	for _, owner := range r.owners[tenantID] {
		if strings.EqualFold(owner.Email, email) {
			found := *owner
			return &found, nil
		}
	}
	return nil, nil
}
