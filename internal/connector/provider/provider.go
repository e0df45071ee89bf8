package provider

import (
	"context"
	"fmt"
	"time"

	"mimir-backend/internal/task/domain"
	"mimir-backend/pkg/config"
)

// RawItem is the provider-neutral shape of one fetched item. Due is an
// ISO-like date string when the source has one; the normalizer owns
// parsing it.
type RawItem struct {
	ID      string
	Title   string
	Subject string
	Snippet string
	URL     string
	Due     string
}

// Credentials is the bundle returned by an OAuth code exchange. Tokens are
// plaintext here; the connector usecase seals them before persistence.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Scopes       []string
	Meta         map[string]string
}

// TestResult reports a connectivity probe.
type TestResult struct {
	Status  string `json:"status"` // "ok" or "error"
	Message string `json:"message,omitempty"`
}

// Provider is the capability set over one source kind. Fetch errors are
// soft: callers record them on the connector row and move on, they never
// abort a multi-connector cycle.
type Provider interface {
	Kind() string
	Authorize(state string) string
	ExchangeCode(ctx context.Context, code string) (*Credentials, error)
	Test(ctx context.Context) TestResult
	Fetch(ctx context.Context) ([]RawItem, error)
}

// Registry builds providers by kind from the process config plus a
// connector's stored credentials.
type Registry struct {
	cfg *config.Config
}

func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{cfg: cfg}
}

// For returns the provider for kind. creds may be nil for flows that only
// need Authorize (no fetch/test possible until connected).
func (r *Registry) For(kind string, creds *Credentials) (Provider, error) {
	switch kind {
	case domain.KindMail:
		return newMailProvider(r.cfg, creds), nil
	case domain.KindIssues:
		return newIssueProvider(r.cfg, creds), nil
	case domain.KindCode:
		return newCodeProvider(r.cfg, creds), nil
	case domain.KindFiles:
		return newFileProvider(r.cfg, creds), nil
	default:
		return nil, fmt.Errorf("unsupported connector kind %q", kind)
	}
}

// Kinds lists the supported connector kinds.
func Kinds() []string {
	return []string{domain.KindMail, domain.KindIssues, domain.KindCode, domain.KindFiles}
}

func okResult() TestResult {
	return TestResult{Status: "ok"}
}

func errResult(err error) TestResult {
	return TestResult{Status: "error", Message: err.Error()}
}
