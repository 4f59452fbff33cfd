package fees

import "math"

// RoundMoney normalises a currency amount to two decimals before it crosses
// an external surface or is persisted on a balance.
func RoundMoney(amount float64) float64 {
	return roundHalfEven(amount, 2)
}

// Split divides the per-bucket cost between the platform and the worker.
// The platform share is rounded half-even at six decimals; the worker gets
// the remainder so the two shares always sum to cost exactly.
func Split(cost, feePercent float64) (platformShare, workerShare float64) {
	platformShare = roundHalfEven(cost*feePercent/100, 6)
	workerShare = cost - platformShare
	return platformShare, workerShare
}

// RoundShare normalises an internal fee share, which carries up to six
// decimals before it is folded into a two-decimal balance.
func RoundShare(amount float64) float64 {
	return roundHalfEven(amount, 6)
}

func roundHalfEven(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	scaled := v * scale
	// A decimal midpoint such as 1.245 is stored slightly off .5 in binary;
	// treat anything within float noise of .5 as the midpoint.
	floor := math.Floor(scaled)
	if math.Abs(scaled-floor-0.5) < 1e-9 {
		if math.Mod(floor, 2) == 0 {
			return floor / scale
		}
		return (floor + 1) / scale
	}
	return math.RoundToEven(scaled) / scale
}
