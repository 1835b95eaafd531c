package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/neonzero/OpenERM/pkg/domain/interfaces"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/repository/firestore"
	"github.com/neonzero/OpenERM/pkg/repository/memory"
)

func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)
}

func runRiskRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID()

		created, err := repo.Risk().Create(ctx, tenantID, &model.Risk{
			Title:              "Supplier outage",
			Taxonomy:           []string{"Operational", "Third Party"},
			InherentLikelihood: 4,
			InherentImpact:     3,
			Status:             model.DefaultRiskStatus,
			Tags:               []string{"vendor"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).NotEqual("")
		gt.Value(t, created.TenantID).Equal(tenantID)
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Bool(t, created.UpdatedAt.IsZero()).False()
		gt.Value(t, created.ResidualScore).Nil()

		got, err := repo.Risk().Get(ctx, tenantID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("Supplier outage")
		gt.Array(t, got.Taxonomy).Length(2)
		gt.Value(t, got.InherentLikelihood).Equal(4)
		gt.Value(t, got.InherentImpact).Equal(3)
	})

	t.Run("Get is tenant scoped", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID()

		created, err := repo.Risk().Create(ctx, tenantID, &model.Risk{Title: "Scoped", InherentLikelihood: 1, InherentImpact: 1})
		gt.NoError(t, err).Required()

		_, err = repo.Risk().Get(ctx, newTenantID(), created.ID)
		gt.Bool(t, isNotFound(err)).True()

		_, err = repo.Risk().Get(ctx, tenantID, "missing")
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("List returns only tenant risks", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantA, tenantB := newTenantID(), newTenantID()

		for _, title := range []string{"One", "Two"} {
			_, err := repo.Risk().Create(ctx, tenantA, &model.Risk{Title: title, InherentLikelihood: 2, InherentImpact: 2})
			gt.NoError(t, err).Required()
		}
		_, err := repo.Risk().Create(ctx, tenantB, &model.Risk{Title: "Other", InherentLikelihood: 2, InherentImpact: 2})
		gt.NoError(t, err).Required()

		risks, err := repo.Risk().List(ctx, tenantA)
		gt.NoError(t, err).Required()
		gt.Array(t, risks).Length(2)

		empty, err := repo.Risk().List(ctx, newTenantID())
		gt.NoError(t, err).Required()
		gt.Array(t, empty).Length(0)
	})

	t.Run("Update replaces fields and keeps CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID()

		created, err := repo.Risk().Create(ctx, tenantID, &model.Risk{Title: "Before", InherentLikelihood: 2, InherentImpact: 2})
		gt.NoError(t, err).Required()

		created.Title = "After"
		created.KeyRisk = true
		updated, err := repo.Risk().Update(ctx, tenantID, created)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Title).Equal("After")
		gt.Bool(t, updated.KeyRisk).True()
		gt.Bool(t, updated.CreatedAt.Equal(created.CreatedAt)).True()

		_, err = repo.Risk().Update(ctx, newTenantID(), created)
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("UpdateResidual writes only residual fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID()

		created, err := repo.Risk().Create(ctx, tenantID, &model.Risk{
			Title:              "Residual",
			InherentLikelihood: 4,
			InherentImpact:     3,
			Tags:               []string{"keep"},
		})
		gt.NoError(t, err).Required()

		updated, err := repo.Risk().UpdateResidual(ctx, tenantID, created.ID, model.ResidualUpdate{
			Likelihood: 2, Impact: 3, Score: 6, AppetiteThreshold: floatPtr(5), AppetiteBreached: true,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, *updated.ResidualScore).Equal(6)

		got, err := repo.Risk().Get(ctx, tenantID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, *got.ResidualLikelihood).Equal(2)
		gt.Value(t, *got.ResidualImpact).Equal(3)
		gt.Value(t, *got.ResidualScore).Equal(6)
		gt.Value(t, *got.AppetiteThreshold).Equal(5.0)
		gt.Bool(t, got.AppetiteBreached).True()
		gt.Value(t, got.InherentLikelihood).Equal(4)
		gt.Value(t, got.InherentImpact).Equal(3)
		gt.Value(t, got.Title).Equal("Residual")
		gt.Array(t, got.Tags).Length(1)

		_, err = repo.Risk().UpdateResidual(ctx, tenantID, "missing", model.ResidualUpdate{})
		gt.Bool(t, isNotFound(err)).True()
	})
}

func TestMemoryRiskRepository(t *testing.T) {
	runRiskRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreRiskRepository(t *testing.T) {
	runRiskRepositoryTest(t, newFirestoreRepository)
}

func TestMemoryRiskRepository_ReturnsCopies(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	created, err := repo.Risk().Create(ctx, "t1", &model.Risk{Title: "Copy", Taxonomy: []string{"a"}, InherentLikelihood: 1, InherentImpact: 1})
	gt.NoError(t, err).Required()
	created.Taxonomy[0] = "mutated"

	got, err := repo.Risk().Get(ctx, "t1", created.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Taxonomy[0]).Equal("a")
}
