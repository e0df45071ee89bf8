package provider

import (
	"context"
	"fmt"
	"time"

	"mimir-backend/internal/task/domain"
	"mimir-backend/pkg/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const fileFetchLimit = 25

// fileProvider surfaces documents recently shared with the user from
// Google Drive. A shared doc usually means someone expects a review.
type fileProvider struct {
	oauth *oauth2.Config
	creds *Credentials
}

func newFileProvider(cfg *config.Config, creds *Credentials) *fileProvider {
	return &fileProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes:       []string{drive.DriveMetadataReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		creds: creds,
	}
}

func (p *fileProvider) Kind() string { return domain.KindFiles }

func (p *fileProvider) Authorize(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (p *fileProvider) ExchangeCode(ctx context.Context, code string) (*Credentials, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange failed: %w", err)
	}
	return credentialsFromToken(token, p.oauth.Scopes), nil
}

func (p *fileProvider) Test(ctx context.Context) TestResult {
	svc, err := p.driveService(ctx)
	if err != nil {
		return errResult(err)
	}
	if _, err := svc.About.Get().Fields("user").Context(ctx).Do(); err != nil {
		return errResult(err)
	}
	return okResult()
}

func (p *fileProvider) Fetch(ctx context.Context) ([]RawItem, error) {
	svc, err := p.driveService(ctx)
	if err != nil {
		return nil, err
	}

	list, err := svc.Files.List().
		Q("sharedWithMe = true and trashed = false").
		OrderBy("sharedWithMeTime desc").
		PageSize(fileFetchLimit).
		Fields("files(id, name, webViewLink)").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("drive list failed: %w", err)
	}

	items := make([]RawItem, 0, len(list.Files))
	for _, f := range list.Files {
		items = append(items, RawItem{
			ID:    f.Id,
			Title: "Review shared file: " + f.Name,
			URL:   f.WebViewLink,
		})
	}
	return items, nil
}

func (p *fileProvider) driveService(ctx context.Context) (*drive.Service, error) {
	if p.creds == nil || p.creds.AccessToken == "" {
		return nil, fmt.Errorf("file-store connector has no credentials")
	}
	token := &oauth2.Token{
		AccessToken:  p.creds.AccessToken,
		RefreshToken: p.creds.RefreshToken,
		TokenType:    "Bearer",
	}
	if p.creds.RefreshToken != "" {
		token.Expiry = time.Now()
	}
	source := p.oauth.TokenSource(ctx, token)
	svc, err := drive.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return svc, nil
}
