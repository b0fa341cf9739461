package ports

import (
	"context"
	"net/url"
	"time"

	"github.com/homewarden/homewarden/internal/core/domain/admission"
)

// WindowCounter counts requests per identifier inside a sliding time window
// on top of a DurableStore. Counts are best-effort: concurrent increments may
// be lost and short-term undercounting is accepted in exchange for not
// writing to the store on every request.
type WindowCounter interface {
	// IncrementAndCheck records one request for identifier and returns the
	// approximate count inside the trailing window plus the instant the
	// window resets. Store failures are returned for the caller's
	// fail-open/fail-closed policy to resolve.
	IncrementAndCheck(ctx context.Context, identifier string, window time.Duration, max int) (count int, resetAt time.Time, err error)
}

// AdmissionService decides whether to admit a request under a named policy.
// It never returns an error: store failures are translated into a decision
// according to the policy's fail-open/fail-closed configuration.
type AdmissionService interface {
	// Check consumes one request unit for identifier under the named
	// policy and reports the decision with rate-limit metadata.
	Check(ctx context.Context, policy string, identifier string) admission.Decision
	// CheckWithLimit is Check with a per-caller limit override (e.g. a
	// household plan limit). overrideMax <= 0 keeps the policy default.
	CheckWithLimit(ctx context.Context, policy string, identifier string, overrideMax int) admission.Decision
}

// ProbeService screens a request against known-malicious traffic patterns
// before it reaches the application, delegating volumetric throttling to the
// admission service. A nil result means the request passes.
type ProbeService interface {
	Evaluate(ctx context.Context, path, userAgent string, query url.Values, clientID string) *admission.Rejection
}
