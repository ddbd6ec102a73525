package mirror

import "fmt"

// RecommendationKind classifies how the best mirror compares with the current source.
type RecommendationKind string

const (
	// KindFastest means there is no comparable current source.
	KindFastest RecommendationKind = "fastest"
	// KindFaster means the best mirror beats a reachable current source.
	KindFaster RecommendationKind = "faster"
	// KindAlreadyFastest means the current source ties with the best mirror.
	KindAlreadyFastest RecommendationKind = "already-fastest"
	// KindCurrentUnreachable means the current source timed out.
	KindCurrentUnreachable RecommendationKind = "current-unreachable"
)

// Recommendation describes the suggested mirror after a benchmark run.
type Recommendation struct {
	Kind    RecommendationKind
	Best    Result
	Current *Result
	Speedup float64
}

// Recommend picks the best reachable mirror from ranked results and compares it
// with the result whose URL matches currentURL, if any. The unreachable marker
// is never used in the speedup calculation.
func Recommend(results []Result, currentURL string) (Recommendation, error) {
	best, err := Fastest(results)
	if err != nil {
		return Recommendation{}, err
	}

	rec := Recommendation{Kind: KindFastest, Best: best}
	if currentURL == "" {
		return rec, nil
	}

	for i := range results {
		if !SameURL(results[i].Mirror.URL, currentURL) {
			continue
		}
		cur := results[i]
		rec.Current = &cur

		switch {
		case !cur.Reachable():
			rec.Kind = KindCurrentUnreachable
		case cur.LatencyMs > best.LatencyMs:
			rec.Kind = KindFaster
			rec.Speedup = Speedup(cur.LatencyMs, best.LatencyMs)
		case cur.LatencyMs == best.LatencyMs:
			rec.Kind = KindAlreadyFastest
		}
		break
	}

	return rec, nil
}

// Speedup returns current/best. A zero best latency is treated as 1ms so
// sub-millisecond mirrors do not divide by zero.
func Speedup(current, best uint64) float64 {
	if current == Unreachable || best == Unreachable {
		return 0
	}
	if best == 0 {
		best = 1
	}
	return float64(current) / float64(best)
}

// Message renders the recommendation as a single user-facing sentence.
func (r Recommendation) Message() string {
	switch r.Kind {
	case KindFaster:
		return fmt.Sprintf("Recommendation: '%s' is %.1fx faster than your current source.", r.Best.Mirror.Name, r.Speedup)
	case KindAlreadyFastest:
		return fmt.Sprintf("Recommendation: Your current source '%s' is already the fastest.", r.Current.Mirror.Name)
	case KindCurrentUnreachable:
		return fmt.Sprintf("Recommendation: '%s' is significantly faster than your current source (Timeout).", r.Best.Mirror.Name)
	default:
		return fmt.Sprintf("Recommendation: '%s' is the fastest.", r.Best.Mirror.Name)
	}
}
