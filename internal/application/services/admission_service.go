package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/domain/admission"
	"github.com/homewarden/homewarden/internal/core/ports"
)

// failClosedRetryAfter is the Retry-After returned when the store is down and
// the policy denies on error. Deliberately short: the outage is usually
// transient and clients should come back soon.
const failClosedRetryAfter = 10 * time.Second

// storeTimeout bounds every window-counter store round trip so a slow store
// never hangs a request.
const storeTimeout = 300 * time.Millisecond

// PolicyConfig is one named admission configuration.
type PolicyConfig struct {
	Window    time.Duration
	MaxCount  int
	KeyPrefix string
	// SkipOnError selects fail-open (true) vs fail-closed (false) when
	// the durable store is unreachable.
	SkipOnError bool
}

// AdmissionService implements ports.AdmissionService over a WindowCounter
// with a set of named policies. Store failures never surface to callers;
// they are resolved into a decision per policy.
type AdmissionService struct {
	counter  ports.WindowCounter
	policies map[string]PolicyConfig
	logger   *logrus.Logger

	now func() time.Time
}

// NewAdmissionService builds the service with its named policies.
func NewAdmissionService(counter ports.WindowCounter, policies map[string]PolicyConfig, logger *logrus.Logger) *AdmissionService {
	if policies == nil {
		policies = make(map[string]PolicyConfig)
	}
	return &AdmissionService{counter: counter, policies: policies, logger: logger, now: time.Now}
}

// Check implements ports.AdmissionService.Check.
func (s *AdmissionService) Check(ctx context.Context, policy, identifier string) admission.Decision {
	return s.CheckWithLimit(ctx, policy, identifier, 0)
}

// CheckWithLimit implements ports.AdmissionService.CheckWithLimit.
func (s *AdmissionService) CheckWithLimit(ctx context.Context, policy, identifier string, overrideMax int) admission.Decision {
	cfg, ok := s.policies[policy]
	if !ok {
		// An unknown policy is a wiring bug, not a reason to reject
		// traffic.
		if s.logger != nil {
			s.logger.WithField("policy", policy).Warn("admission: unknown policy, allowing")
		}
		return admission.Decision{Allowed: true}
	}
	max := cfg.MaxCount
	if overrideMax > 0 {
		max = overrideMax
	}

	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	count, resetAt, err := s.counter.IncrementAndCheck(cctx, cfg.KeyPrefix+":"+identifier, cfg.Window, max)
	if err != nil {
		return s.decideOnError(policy, identifier, cfg, max, err)
	}

	d := admission.Decision{
		Allowed:   count <= max,
		Limit:     max,
		Remaining: max - count,
		ResetAt:   resetAt,
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		retry := int(time.Until(resetAt).Seconds()) + 1
		if retry < 1 {
			retry = 1
		}
		d.RetryAfter = retry
	}
	return d
}

// decideOnError translates a store failure into a decision per the policy's
// fail-open/fail-closed setting.
func (s *AdmissionService) decideOnError(policy, identifier string, cfg PolicyConfig, max int, err error) admission.Decision {
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"policy":     policy,
			"identifier": admission.MaskIdentifier(identifier),
		}).WithError(err).Warn("admission: store unavailable")
	}
	resetAt := s.now().Add(cfg.Window)
	if cfg.SkipOnError {
		return admission.Decision{Allowed: true, Limit: max, Remaining: max - 1, ResetAt: resetAt}
	}
	return admission.Decision{
		Allowed:    false,
		Limit:      max,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: int(failClosedRetryAfter.Seconds()),
	}
}
