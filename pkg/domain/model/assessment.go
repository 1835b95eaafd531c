package model

import (
	"fmt"
	"time"

	"github.com/neonzero/OpenERM/pkg/domain/types"
)

// AssessmentScores are the raw inputs of one assessment submission
type AssessmentScores struct {
	Likelihood         int
	Impact             int
	ResidualLikelihood *int
	ResidualImpact     *int
	Velocity           *int
	AppetiteThreshold  *float64
}

// Assessment is an immutable scoring event attached to a Risk
type Assessment struct {
	ID            string
	TenantID      string
	RiskID        string
	Method        types.AssessmentMethod
	Scores        AssessmentScores
	ResidualScore int
	MatrixBucket  string
	ReviewerID    *string
	ApprovedAt    *time.Time
	Notes         string
	CreatedAt     time.Time
}

// MatrixBucket encodes a likelihood/impact pair as "{likelihood}-{impact}"
func MatrixBucket(likelihood, impact int) string {
	return fmt.Sprintf("%d-%d", likelihood, impact)
}
