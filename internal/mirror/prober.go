package mirror

import (
	"context"
	"net/http"
	"time"

	"github.com/dishar7753/cmirror/internal/safety"
)

const (
	// DefaultProbeTimeout bounds a single probe so slow mirrors cannot stall a run.
	DefaultProbeTimeout = 3 * time.Second
	defaultUserAgent    = "cmirror/1.0"
)

// Prober measures time-to-first-byte for one mirror with a HEAD request.
// A Prober is safe for concurrent use; its client is never mutated after construction.
type Prober struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// NewProber creates a Prober whose client enforces timeout on every request.
func NewProber(timeout time.Duration, userAgent string) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Prober{
		client:    safety.NewHTTPClient(timeout),
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// Timeout returns the per-probe timeout.
func (p *Prober) Timeout() time.Duration {
	return p.timeout
}

// Probe issues a single HEAD request against m. Every failure, including a
// non-2xx status, is reported as Unreachable rather than as an error.
func (p *Prober) Probe(ctx context.Context, m Mirror) Result {
	res := Result{Mirror: m, LatencyMs: Unreachable}

	target := ProbeURL(m.URL)
	if _, err := safety.ValidateHTTPURL(target); err != nil {
		return res
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, target, nil)
	if err != nil {
		return res
	}
	req.Header.Set("User-Agent", p.userAgent)

	start := time.Now()
	resp, err := p.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return res
	}
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res
	}

	res.LatencyMs = uint64(elapsed.Milliseconds())
	return res
}
