package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/domain/admission"
	"github.com/homewarden/homewarden/internal/core/ports"
)

// ProbeConfig holds the static rule sets the filter matches against, loaded
// once at process start. All matching is case-insensitive; rules are
// lowercased at construction.
type ProbeConfig struct {
	// AllowedClients bypass the filter entirely, by exact identifier or
	// identifier prefix.
	AllowedClients []string
	// BlockedPaths reject a path that equals the entry or continues it
	// with "/" or ".". "/admin" blocks "/admin/x" and "/admin.bak" but
	// not "/administration".
	BlockedPaths []string
	// BlockedExtensions reject by the path's final dot-extension,
	// without the dot ("php", "asp").
	BlockedExtensions []string
	// BlockedUserAgents reject by user-agent substring.
	BlockedUserAgents []string
	// SuspiciousParams reject when any "key=value" query pair contains
	// one of these substrings (injection/traversal fragments).
	SuspiciousParams []string
	// ThrottlePolicy names the admission policy used for volumetric
	// throttling of traffic that passes the pattern checks.
	ThrottlePolicy string
}

// DefaultProbeConfig is the baseline rule set; deployments extend it via
// configuration.
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		BlockedPaths: []string{
			"/wp-admin", "/wp-login", "/wp-content", "/xmlrpc",
			"/phpmyadmin", "/cgi-bin", "/.env", "/.git", "/vendor/phpunit",
		},
		BlockedExtensions: []string{"php", "asp", "aspx", "jsp", "cgi", "sql", "bak"},
		BlockedUserAgents: []string{
			"sqlmap", "nikto", "nessus", "masscan", "zgrab", "dirbuster", "wpscan",
		},
		SuspiciousParams: []string{
			"union select", "' or 1=1", "../", "..\\", "<script", "javascript:",
			"$where", "sleep(", "etc/passwd",
		},
		ThrottlePolicy: "edge",
	}
}

// ProbeService implements ports.ProbeService: a stateless pattern matcher
// over path, extension, user-agent and query parameters, with volumetric
// throttling delegated to the admission service. Checks run in a fixed
// order and the first match wins.
type ProbeService struct {
	cfg       ProbeConfig
	admission ports.AdmissionService
	logger    *logrus.Logger
}

// NewProbeService lowercases the rule sets once and wires the throttle
// delegate.
func NewProbeService(cfg ProbeConfig, admissionSvc ports.AdmissionService, logger *logrus.Logger) *ProbeService {
	cfg.AllowedClients = lowerAll(cfg.AllowedClients)
	cfg.BlockedPaths = lowerAll(cfg.BlockedPaths)
	cfg.BlockedExtensions = lowerAll(cfg.BlockedExtensions)
	cfg.BlockedUserAgents = lowerAll(cfg.BlockedUserAgents)
	cfg.SuspiciousParams = lowerAll(cfg.SuspiciousParams)
	if cfg.ThrottlePolicy == "" {
		cfg.ThrottlePolicy = "edge"
	}
	return &ProbeService{cfg: cfg, admission: admissionSvc, logger: logger}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Evaluate implements ports.ProbeService. A nil return admits the request.
func (s *ProbeService) Evaluate(ctx context.Context, path, userAgent string, query url.Values, clientID string) *admission.Rejection {
	lcClient := strings.ToLower(clientID)
	for _, allowed := range s.cfg.AllowedClients {
		if lcClient == allowed || strings.HasPrefix(lcClient, allowed) {
			return nil
		}
	}

	lcPath := strings.ToLower(path)
	for _, blocked := range s.cfg.BlockedPaths {
		if matchesPathBoundary(lcPath, blocked) {
			return s.reject(admission.Rejection{Reason: admission.ReasonPath, Rule: blocked}, path, clientID)
		}
	}

	if ext := pathExtension(lcPath); ext != "" {
		for _, blocked := range s.cfg.BlockedExtensions {
			if ext == blocked {
				return s.reject(admission.Rejection{Reason: admission.ReasonExtension, Rule: blocked}, path, clientID)
			}
		}
	}

	lcAgent := strings.ToLower(userAgent)
	for _, blocked := range s.cfg.BlockedUserAgents {
		if strings.Contains(lcAgent, blocked) {
			return s.reject(admission.Rejection{Reason: admission.ReasonUserAgent, Rule: blocked}, path, clientID)
		}
	}

	if s.admission != nil {
		d := s.admission.Check(ctx, s.cfg.ThrottlePolicy, clientID)
		if !d.Allowed {
			return s.reject(admission.Rejection{Reason: admission.ReasonThrottle, Rule: s.cfg.ThrottlePolicy, Decision: &d}, path, clientID)
		}
	}

	for key, vals := range query {
		for _, val := range vals {
			pair := strings.ToLower(key + "=" + val)
			for _, pattern := range s.cfg.SuspiciousParams {
				if strings.Contains(pair, pattern) {
					return s.reject(admission.Rejection{Reason: admission.ReasonParameter, Rule: pattern}, path, clientID)
				}
			}
		}
	}

	return nil
}

// matchesPathBoundary applies the exact-boundary rule: the blocked entry
// matches itself and continuations separated by "/" or ".", never a longer
// route name that merely shares the prefix.
func matchesPathBoundary(path, blocked string) bool {
	return path == blocked ||
		strings.HasPrefix(path, blocked+"/") ||
		strings.HasPrefix(path, blocked+".")
}

// pathExtension returns the final dot-extension of the last path segment,
// without the dot, or "".
func pathExtension(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}
	if j := strings.LastIndexByte(path, '.'); j >= 0 && j < len(path)-1 {
		return path[j+1:]
	}
	return ""
}

func (s *ProbeService) reject(r admission.Rejection, path, clientID string) *admission.Rejection {
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"reason": string(r.Reason),
			"rule":   r.Rule,
			"path":   path,
			"client": admission.MaskIdentifier(clientID),
		}).Info("probe: request rejected")
	}
	return &r
}
