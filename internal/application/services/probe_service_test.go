package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/homewarden/homewarden/internal/core/domain/admission"
)

type admissionMock struct {
	CheckFn func(ctx context.Context, policy, identifier string) admission.Decision
}

func (m *admissionMock) Check(ctx context.Context, policy, identifier string) admission.Decision {
	if m.CheckFn != nil {
		return m.CheckFn(ctx, policy, identifier)
	}
	return admission.Decision{Allowed: true}
}

func (m *admissionMock) CheckWithLimit(ctx context.Context, policy, identifier string, overrideMax int) admission.Decision {
	return m.Check(ctx, policy, identifier)
}

func newProbe(t *testing.T, cfg ProbeConfig, adm *admissionMock) *ProbeService {
	t.Helper()
	if adm == nil {
		adm = &admissionMock{}
	}
	return NewProbeService(cfg, adm, logrus.New())
}

func TestProbeService_PathBoundaryMatching(t *testing.T) {
	p := newProbe(t, ProbeConfig{BlockedPaths: []string{"/admin"}}, nil)
	ctx := context.Background()

	cases := []struct {
		path    string
		blocked bool
	}{
		{"/admin", true},
		{"/Admin", true},
		{"/admin/users", true},
		{"/admin.bak", true},
		{"/administration", false},
		{"/adminx", false},
		{"/api/admin", false},
	}
	for _, tc := range cases {
		r := p.Evaluate(ctx, tc.path, "Mozilla/5.0", nil, "ip:1.2.3.4")
		if tc.blocked {
			require.NotNil(t, r, "expected %s to be rejected", tc.path)
			require.Equal(t, admission.ReasonPath, r.Reason)
			require.Equal(t, "/admin", r.Rule)
		} else {
			require.Nil(t, r, "expected %s to pass", tc.path)
		}
	}
}

func TestProbeService_DefaultRulesCatchProbes(t *testing.T) {
	p := newProbe(t, DefaultProbeConfig(), nil)
	ctx := context.Background()

	r := p.Evaluate(ctx, "/wp-admin/install.php", "Mozilla/5.0", nil, "ip:1.2.3.4")
	require.NotNil(t, r)
	// Path matching runs before extension matching.
	require.Equal(t, admission.ReasonPath, r.Reason)
	require.Equal(t, "/wp-admin", r.Rule)

	r = p.Evaluate(ctx, "/index.php", "Mozilla/5.0", nil, "ip:1.2.3.4")
	require.NotNil(t, r)
	require.Equal(t, admission.ReasonExtension, r.Reason)
	require.Equal(t, "php", r.Rule)

	r = p.Evaluate(ctx, "/records", "sqlmap/1.7", nil, "ip:1.2.3.4")
	require.NotNil(t, r)
	require.Equal(t, admission.ReasonUserAgent, r.Reason)

	r = p.Evaluate(ctx, "/records", "Mozilla/5.0", url.Values{"q": {"1 UNION SELECT password"}}, "ip:1.2.3.4")
	require.NotNil(t, r)
	require.Equal(t, admission.ReasonParameter, r.Reason)

	r = p.Evaluate(ctx, "/records", "Mozilla/5.0", url.Values{"path": {"../../etc/passwd"}}, "ip:1.2.3.4")
	require.NotNil(t, r)
	require.Equal(t, admission.ReasonParameter, r.Reason)

	r = p.Evaluate(ctx, "/api/v1/records", "Mozilla/5.0", url.Values{"q": {"pizza"}}, "ip:1.2.3.4")
	require.Nil(t, r)
}

func TestProbeService_AllowedClientsBypassEverything(t *testing.T) {
	adm := &admissionMock{CheckFn: func(ctx context.Context, policy, id string) admission.Decision {
		t.Fatal("allow-listed client must not be throttled")
		return admission.Decision{}
	}}
	p := newProbe(t, ProbeConfig{
		AllowedClients: []string{"member:"},
		BlockedPaths:   []string{"/wp-admin"},
	}, adm)

	r := p.Evaluate(context.Background(), "/wp-admin", "sqlmap", nil, "member:42")
	require.Nil(t, r)
}

func TestProbeService_ThrottleDelegation(t *testing.T) {
	denied := admission.Decision{
		Allowed:    false,
		Limit:      300,
		Remaining:  0,
		ResetAt:    time.Now().Add(30 * time.Second),
		RetryAfter: 30,
	}
	var gotPolicy, gotID string
	adm := &admissionMock{CheckFn: func(ctx context.Context, policy, id string) admission.Decision {
		gotPolicy, gotID = policy, id
		return denied
	}}
	p := newProbe(t, DefaultProbeConfig(), adm)

	r := p.Evaluate(context.Background(), "/api/v1/records", "Mozilla/5.0", nil, "ip:1.2.3.4")
	require.NotNil(t, r)
	require.Equal(t, admission.ReasonThrottle, r.Reason)
	require.NotNil(t, r.Decision)
	require.Equal(t, 30, r.Decision.RetryAfter)
	require.Equal(t, "edge", gotPolicy)
	require.Equal(t, "ip:1.2.3.4", gotID)
}

func TestProbeService_PatternChecksRunBeforeThrottle(t *testing.T) {
	adm := &admissionMock{CheckFn: func(ctx context.Context, policy, id string) admission.Decision {
		t.Fatal("pattern-rejected request must not consume rate limit")
		return admission.Decision{}
	}}
	p := newProbe(t, DefaultProbeConfig(), adm)

	r := p.Evaluate(context.Background(), "/wp-login.php", "Mozilla/5.0", nil, "ip:1.2.3.4")
	require.NotNil(t, r)
	require.Equal(t, admission.ReasonPath, r.Reason)
}
