package admission

import (
	"strings"
	"time"
)

// Decision is the outcome of one admission check. It is computed fresh per
// call and never persisted.
type Decision struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds; set only when denied
}

// RejectReason classifies why the probe filter turned a request away.
type RejectReason string

const (
	ReasonPath      RejectReason = "path"
	ReasonExtension RejectReason = "extension"
	ReasonUserAgent RejectReason = "user_agent"
	ReasonThrottle  RejectReason = "throttle"
	ReasonParameter RejectReason = "parameter"
)

// Rejection is the probe filter's classification of a blocked request.
// Rejections are normal control flow, not errors.
type Rejection struct {
	Reason RejectReason
	// Rule is the matched rule (blocked path, extension, substring...).
	Rule string
	// Decision carries rate-limit metadata when Reason is ReasonThrottle.
	Decision *Decision
}

// MaskIdentifier shortens a client identifier for logging so raw addresses
// and principal ids never land in full in log storage.
func MaskIdentifier(id string) string {
	const visible = 10
	if len(id) <= visible {
		return id + "***"
	}
	return id[:visible] + "***"
}

// ResolveIdentifier picks the client identifier for rate limiting with the
// priority: authenticated principal > trusted connecting-IP header > first
// proxy-forwarded address > remote address > "unknown".
func ResolveIdentifier(principalID, connectingIP, forwardedFor, remoteAddr string) string {
	if principalID != "" {
		return "member:" + principalID
	}
	if connectingIP != "" {
		return "ip:" + connectingIP
	}
	if forwardedFor != "" {
		first := forwardedFor
		if i := strings.Index(forwardedFor, ","); i >= 0 {
			first = forwardedFor[:i]
		}
		if first = strings.TrimSpace(first); first != "" {
			return "ip:" + first
		}
	}
	if remoteAddr != "" {
		return "ip:" + remoteAddr
	}
	return "unknown"
}
