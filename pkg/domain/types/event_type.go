package types

// EventType is the type tag of a domain event handed to the event sink
type EventType string

const (
	EventRiskCreated                EventType = "risk.created"
	EventRiskAssessed               EventType = "risk.assessed"
	EventRiskImported               EventType = "risk.imported"
	EventRiskKeyRiskChanged         EventType = "risk.key-risk-changed"
	EventAppetiteRecalibrated       EventType = "risk.appetite.recalibrated"
	EventTreatmentCreated           EventType = "risk.treatment.created"
	EventTreatmentStatusChanged     EventType = "risk.treatment.status-changed"
	EventTreatmentOverdue           EventType = "risk.treatment.overdue"
	EventIndicatorCreated           EventType = "risk.indicator.created"
	EventIndicatorReadingRecorded   EventType = "risk.indicator.reading-recorded"
	EventIndicatorThresholdBreached EventType = "risk.indicator.threshold-breached"
)

func (e EventType) String() string {
	return string(e)
}

// Entity names used in events
const (
	EntityRisk       = "risk"
	EntityAssessment = "assessment"
	EntityTreatment  = "treatment"
	EntityIndicator  = "indicator"
)
