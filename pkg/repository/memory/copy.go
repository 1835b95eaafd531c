package memory

import (
	"time"

	"github.com/neonzero/OpenERM/pkg/domain/model"
)

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// copyRisk creates a deep copy of a risk
func copyRisk(r *model.Risk) *model.Risk {
	c := *r
	c.Taxonomy = copyStrings(r.Taxonomy)
	c.Tags = copyStrings(r.Tags)
	c.OwnerID = copyStringPtr(r.OwnerID)
	c.ResidualLikelihood = copyIntPtr(r.ResidualLikelihood)
	c.ResidualImpact = copyIntPtr(r.ResidualImpact)
	c.ResidualScore = copyIntPtr(r.ResidualScore)
	c.AppetiteThreshold = copyFloatPtr(r.AppetiteThreshold)
	return &c
}

func copyAssessment(a *model.Assessment) *model.Assessment {
	c := *a
	c.Scores.ResidualLikelihood = copyIntPtr(a.Scores.ResidualLikelihood)
	c.Scores.ResidualImpact = copyIntPtr(a.Scores.ResidualImpact)
	c.Scores.Velocity = copyIntPtr(a.Scores.Velocity)
	c.Scores.AppetiteThreshold = copyFloatPtr(a.Scores.AppetiteThreshold)
	c.ReviewerID = copyStringPtr(a.ReviewerID)
	c.ApprovedAt = copyTimePtr(a.ApprovedAt)
	return &c
}

func copyTreatment(t *model.Treatment) *model.Treatment {
	c := *t
	c.OwnerID = copyStringPtr(t.OwnerID)
	c.DueDate = copyTimePtr(t.DueDate)
	if t.Tasks != nil {
		c.Tasks = make([]model.TreatmentTask, len(t.Tasks))
		for i, task := range t.Tasks {
			task.DueDate = copyTimePtr(task.DueDate)
			c.Tasks[i] = task
		}
	}
	return &c
}

func copyIndicator(ind *model.Indicator) *model.Indicator {
	c := *ind
	c.Threshold = copyFloatPtr(ind.Threshold)
	c.LatestValue = copyFloatPtr(ind.LatestValue)
	c.LatestRecordedAt = copyTimePtr(ind.LatestRecordedAt)
	return &c
}

func copyReading(r *model.IndicatorReading) *model.IndicatorReading {
	c := *r
	return &c
}
