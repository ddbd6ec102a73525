package mirror

import (
	"errors"
	"math"
	"strings"
)

// Unreachable is the latency reported for a mirror whose probe failed or timed out.
// It is a marker, not a measurement.
const Unreachable uint64 = math.MaxUint64

var (
	// ErrAllUnreachable is returned when a fastest-mirror selection finds no reachable candidate.
	ErrAllUnreachable = errors.New("all mirrors timed out, please check your network connection")

	// ErrNoCandidates is returned when there is nothing to benchmark or select from.
	ErrNoCandidates = errors.New("no mirror candidates available")
)

// Mirror is a named download source for a package manager.
type Mirror struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Result holds the outcome of a single latency probe.
type Result struct {
	Mirror    Mirror `json:"mirror"`
	LatencyMs uint64 `json:"latency_ms"`
}

// Reachable reports whether the probe produced a real latency.
func (r Result) Reachable() bool {
	return r.LatencyMs != Unreachable
}

// probePrefixes are tool-specific URL scheme prefixes that are not part of the HTTP address.
var probePrefixes = []string{"sparse+", "git+"}

// ProbeURL returns the address that should actually be requested for u.
func ProbeURL(u string) string {
	for _, p := range probePrefixes {
		u = strings.TrimPrefix(u, p)
	}
	return u
}

// SameURL compares two mirror URLs ignoring trailing slashes.
func SameURL(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}

// FindByURL returns the candidate whose URL matches u.
func FindByURL(candidates []Mirror, u string) (Mirror, bool) {
	for _, m := range candidates {
		if SameURL(m.URL, u) {
			return m, true
		}
	}
	return Mirror{}, false
}

// FindByName returns the candidate whose name matches name case-insensitively.
func FindByName(candidates []Mirror, name string) (Mirror, bool) {
	for _, m := range candidates {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return Mirror{}, false
}
