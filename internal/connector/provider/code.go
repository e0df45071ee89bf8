package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"mimir-backend/internal/task/domain"
	"mimir-backend/pkg/config"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

const codeFetchLimit = 25

// codeProvider reads the user's open assigned issues and review requests
// from GitHub.
type codeProvider struct {
	oauth *oauth2.Config
	creds *Credentials
}

func newCodeProvider(cfg *config.Config, creds *Credentials) *codeProvider {
	return &codeProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.GithubClientID,
			ClientSecret: cfg.GithubClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes:       []string{"repo", "read:user"},
			Endpoint:     githuboauth.Endpoint,
		},
		creds: creds,
	}
}

func (p *codeProvider) Kind() string { return domain.KindCode }

func (p *codeProvider) Authorize(state string) string {
	return p.oauth.AuthCodeURL(state)
}

func (p *codeProvider) ExchangeCode(ctx context.Context, code string) (*Credentials, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github code exchange failed: %w", err)
	}
	return credentialsFromToken(token, p.oauth.Scopes), nil
}

func (p *codeProvider) Test(ctx context.Context) TestResult {
	if p.creds == nil || p.creds.AccessToken == "" {
		return errResult(fmt.Errorf("code-host connector has no credentials"))
	}
	var user struct {
		Login string `json:"login"`
	}
	if err := p.getJSON(ctx, "https://api.github.com/user", &user); err != nil {
		return errResult(err)
	}
	return okResult()
}

func (p *codeProvider) Fetch(ctx context.Context) ([]RawItem, error) {
	if p.creds == nil || p.creds.AccessToken == "" {
		return nil, fmt.Errorf("code-host connector has no credentials")
	}

	endpoint := fmt.Sprintf("https://api.github.com/issues?filter=assigned&state=open&per_page=%d", codeFetchLimit)
	var issues []struct {
		Title   string `json:"title"`
		Body    string `json:"body"`
		HTMLURL string `json:"html_url"`
		Repo    struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
		Number int `json:"number"`
	}
	if err := p.getJSON(ctx, endpoint, &issues); err != nil {
		return nil, fmt.Errorf("github issue list failed: %w", err)
	}

	items := make([]RawItem, 0, len(issues))
	for _, issue := range issues {
		snippet := issue.Body
		if len(snippet) > 280 {
			snippet = snippet[:280]
		}
		items = append(items, RawItem{
			ID:      fmt.Sprintf("%s#%d", issue.Repo.FullName, issue.Number),
			Title:   issue.Title,
			Snippet: snippet,
			URL:     issue.HTMLURL,
		})
	}
	return items, nil
}

func (p *codeProvider) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.creds.AccessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github API error (%d): %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
