package model

import "math"

// CableEstimate holds the results of a cable purchasing calculation.
type CableEstimate struct {
	Cables        int     `json:"cables"`
	RoutedLength  float64 `json:"routed_length"`  // Sum of routed lengths (mm)
	ServiceLength float64 `json:"service_length"` // Allowance added at every cable end (mm)
	SlackPercent  float64 `json:"slack_percent"`  // Slack factor applied (e.g., 10 for 10%)
	TotalLength   float64 `json:"total_length"`   // Length to cut including allowance and slack (mm)
	LongestCable  float64 `json:"longest_cable"`  // Longest single cut including allowance and slack (mm)
	ReelLength    float64 `json:"reel_length"`    // Length of one reel (mm)
	ReelsExact    float64 `json:"reels_exact"`    // Exact fractional number of reels
	ReelsNeeded   int     `json:"reels_needed"`   // Reels to buy (ceiling of exact)
	ExceedsReel   bool    `json:"exceeds_reel"`   // A single cut is longer than one reel
	PricePerReel  float64 `json:"price_per_reel"` // Price used for estimation
	EstimatedCost float64 `json:"estimated_cost"` // Total cost if pricing available
}

// CalculateCableEstimate computes how much cable to buy for a set of
// routed lengths. Every cable gets serviceLoop added at both ends, then the
// slack percentage on top.
func CalculateCableEstimate(lengths []float64, serviceLoop, slackPercent, reelLength, pricePerReel float64) CableEstimate {
	slackFactor := 1.0 + slackPercent/100.0

	var routed, total, longest float64
	for _, l := range lengths {
		routed += l
		cut := (l + 2*serviceLoop) * slackFactor
		total += cut
		longest = math.Max(longest, cut)
	}

	est := CableEstimate{
		Cables:        len(lengths),
		RoutedLength:  routed,
		ServiceLength: 2 * serviceLoop * float64(len(lengths)),
		SlackPercent:  slackPercent,
		TotalLength:   total,
		LongestCable:  longest,
		ReelLength:    reelLength,
		PricePerReel:  pricePerReel,
	}
	if reelLength <= 0 {
		return est
	}

	est.ReelsExact = total / reelLength
	est.ReelsNeeded = int(math.Ceil(est.ReelsExact))
	est.ExceedsReel = longest > reelLength
	est.EstimatedCost = float64(est.ReelsNeeded) * pricePerReel
	return est
}
