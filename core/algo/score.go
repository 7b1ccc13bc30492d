package algo

import (
	"math"
	"time"

	"github.com/newsradar/trendwatch/schema"
)

// Spike ratio clamp bounds per the detection model: a ratio below 1.0 carries
// no spike signal, and anything past 5.0 is already a maximal burst.
const (
	spikeRatioFloor = 1.0
	spikeRatioCeil  = 5.0
)

// Recency decay bounds: full weight under an hour since last activity,
// decaying linearly to the floor at six hours and beyond.
const (
	recencyFullWindow = 1 * time.Hour
	recencyZeroWindow = 6 * time.Hour
	recencyFloor      = 0.3
)

// Velocity computes the growth percentage of the short-window rate against
// the baseline rate. A zero baseline with activity returns the configured
// sentinel (a brand-new topic is maximally fast, not an error); zero activity
// on a zero baseline is 0.
func Velocity(shortRate, baselineRate, sentinel float64) float64 {
	if baselineRate <= 0 {
		if shortRate > 0 {
			return sentinel
		}
		return 0
	}
	return ((shortRate - baselineRate) / baselineRate) * 100.0
}

// SpikeRatio divides the short-window hourly rate by the long-window hourly
// rate, clamped to [1.0, 5.0]. An empty long window with activity clamps to
// the ceiling; no activity at all yields the floor.
func SpikeRatio(shortRate, longRate float64) float64 {
	if longRate <= 0 {
		if shortRate > 0 {
			return spikeRatioCeil
		}
		return spikeRatioFloor
	}
	ratio := shortRate / longRate
	return math.Min(math.Max(ratio, spikeRatioFloor), spikeRatioCeil)
}

// RecencyDecay returns the multiplier applied to the whole rank score based
// on time since the topic was last seen: 1.0 when fresh, linearly down to the
// floor once the topic has been quiet for six hours.
func RecencyDecay(sinceLastSeen time.Duration) float64 {
	if sinceLastSeen <= recencyFullWindow {
		return 1.0
	}
	if sinceLastSeen >= recencyZeroWindow {
		return recencyFloor
	}
	span := float64(recencyZeroWindow - recencyFullWindow)
	frac := float64(sinceLastSeen-recencyFullWindow) / span
	return 1.0 - frac*(1.0-recencyFloor)
}

// RankInput carries everything the composite rank score needs.
type RankInput struct {
	SpikeRatio      float64
	Mentions1h      int
	Velocity        float64
	VelocityCap     float64
	SourceTypeCount int
	SinceLastSeen   time.Duration
}

// ComputeRankScore combines spike ratio, short-window volume, capped velocity
// and cross-source diversity into one composite score, then applies the
// recency decay multiplier. The per-component contributions (pre-decay) are
// recorded in the returned breakdown for explain mode.
func ComputeRankScore(in RankInput, weights map[schema.RankComponent]float64) (float64, map[schema.RankComponent]float64) {
	breakdown := make(map[schema.RankComponent]float64)

	breakdown[schema.RankSpike] = weights[schema.RankSpike] * in.SpikeRatio
	breakdown[schema.RankMentions] = weights[schema.RankMentions] * float64(in.Mentions1h)
	breakdown[schema.RankVelocity] = weights[schema.RankVelocity] * math.Min(in.Velocity, in.VelocityCap)

	// Diversity rewards corroboration: the bonus applies once a topic shows
	// up on two or more distinct source types.
	if in.SourceTypeCount >= 2 {
		breakdown[schema.RankDiversity] = weights[schema.RankDiversity] * float64(in.SourceTypeCount-1)
	} else {
		breakdown[schema.RankDiversity] = 0
	}

	var raw float64
	for _, v := range breakdown {
		raw += v
	}
	return raw * RecencyDecay(in.SinceLastSeen), breakdown
}

// ConfidenceScore estimates 0-100 how much evidence backs a trend: volume
// saturates at 20 daily mentions, diversity at all three source types, and
// authority contributes the remainder.
func ConfidenceScore(mentions24h, sourceTypeCount int, topAuthority float64) float64 {
	volume := math.Min(float64(mentions24h)/20.0, 1.0)
	diversity := math.Min(float64(sourceTypeCount)/3.0, 1.0)
	authority := math.Min(math.Max(topAuthority, 0), 1.0)
	return (0.5*volume + 0.3*diversity + 0.2*authority) * 100.0
}
