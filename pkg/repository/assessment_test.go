package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/neonzero/OpenERM/pkg/domain/interfaces"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/types"
)

func runAssessmentRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("ListByRisk returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tenantID := newTenantID()
		base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

		for i, bucket := range []string{"1-1", "2-2", "3-3"} {
			_, err := repo.Assessment().Create(ctx, tenantID, &model.Assessment{
				RiskID:        "risk-1",
				Method:        types.AssessmentMethodQualitative,
				Scores:        model.AssessmentScores{Likelihood: i + 1, Impact: i + 1, Velocity: intPtr(2)},
				ResidualScore: (i + 1) * (i + 1),
				MatrixBucket:  bucket,
				CreatedAt:     base.Add(time.Duration(i) * time.Hour),
			})
			gt.NoError(t, err).Required()
		}
		_, err := repo.Assessment().Create(ctx, tenantID, &model.Assessment{RiskID: "risk-2", MatrixBucket: "5-5"})
		gt.NoError(t, err).Required()

		list, err := repo.Assessment().ListByRisk(ctx, tenantID, "risk-1")
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(3)
		gt.Value(t, list[0].MatrixBucket).Equal("3-3")
		gt.Value(t, list[2].MatrixBucket).Equal("1-1")
		gt.Value(t, *list[0].Scores.Velocity).Equal(2)

		other, err := repo.Assessment().ListByRisk(ctx, newTenantID(), "risk-1")
		gt.NoError(t, err).Required()
		gt.Array(t, other).Length(0)
	})
}

func TestMemoryAssessmentRepository(t *testing.T) {
	runAssessmentRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreAssessmentRepository(t *testing.T) {
	runAssessmentRepositoryTest(t, newFirestoreRepository)
}
