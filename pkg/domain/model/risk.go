package model

import "time"

// Risk is a tracked exposure scored by likelihood and impact on a 1..5 scale.
//
// ResidualScore, when set, always equals residual likelihood x residual impact, and
// AppetiteBreached is true iff AppetiteThreshold is set and ResidualScore exceeds it.
type Risk struct {
	ID          string
	TenantID    string
	Title       string
	Description string
	Taxonomy    []string
	Cause       string
	Consequence string
	OwnerID     *string

	InherentLikelihood int
	InherentImpact     int

	// nil means "not yet scored" and reads as the inherent value
	ResidualLikelihood *int
	ResidualImpact     *int
	ResidualScore      *int

	// Snapshot of the threshold used at the last scoring event
	AppetiteThreshold *float64
	AppetiteBreached  bool

	Status  string
	KeyRisk bool
	Tags    []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultRiskStatus is applied when a risk is created without a status
const DefaultRiskStatus = "Open"

// InherentScore returns inherent likelihood x inherent impact
func (r *Risk) InherentScore() int {
	return r.InherentLikelihood * r.InherentImpact
}

// EffectiveResidual returns the residual likelihood and impact, each falling back to the
// inherent value independently when unset.
func (r *Risk) EffectiveResidual() (likelihood, impact int) {
	likelihood, impact = r.InherentLikelihood, r.InherentImpact
	if r.ResidualLikelihood != nil {
		likelihood = *r.ResidualLikelihood
	}
	if r.ResidualImpact != nil {
		impact = *r.ResidualImpact
	}
	return likelihood, impact
}

// EffectiveScore returns the residual score, or the product of the effective residual axes
// when the risk has never been scored.
func (r *Risk) EffectiveScore() int {
	if r.ResidualScore != nil {
		return *r.ResidualScore
	}
	l, i := r.EffectiveResidual()
	return l * i
}

// ResidualUpdate is the only mutation scoring workflows apply to a Risk
type ResidualUpdate struct {
	Likelihood        int
	Impact            int
	Score             int
	AppetiteThreshold *float64
	AppetiteBreached  bool
}

// ApplyResidual writes u onto the residual fields of r. Inherent fields are untouched.
func (r *Risk) ApplyResidual(u ResidualUpdate) {
	l, i, s := u.Likelihood, u.Impact, u.Score
	r.ResidualLikelihood = &l
	r.ResidualImpact = &i
	r.ResidualScore = &s
	if u.AppetiteThreshold != nil {
		threshold := *u.AppetiteThreshold
		r.AppetiteThreshold = &threshold
	} else {
		r.AppetiteThreshold = nil
	}
	r.AppetiteBreached = u.AppetiteBreached
}

// Owner is a tenant user who can own risks and treatments
type Owner struct {
	ID          string
	TenantID    string
	Email       string `masq:"secret"`
	DisplayName string
}
