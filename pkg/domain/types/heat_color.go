package types

// HeatColor is the heat-map classification of a residual score
type HeatColor string

const (
	HeatColorGreen HeatColor = "green"
	HeatColorAmber HeatColor = "amber"
	HeatColorRed   HeatColor = "red"
)

// Rank orders colors by severity: green < amber < red. Unknown colors rank 0.
func (c HeatColor) Rank() int {
	switch c {
	case HeatColorGreen:
		return 1
	case HeatColorAmber:
		return 2
	case HeatColorRed:
		return 3
	default:
		return 0
	}
}

func (c HeatColor) String() string {
	return string(c)
}
