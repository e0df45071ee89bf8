package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"mimir-backend/internal/task/domain"
	"mimir-backend/pkg/config"

	"golang.org/x/oauth2"
)

const issueFetchLimit = 25

var atlassianEndpoint = oauth2.Endpoint{
	AuthURL:  "https://auth.atlassian.com/authorize",
	TokenURL: "https://auth.atlassian.com/oauth/token",
}

// issueProvider reads the user's open assigned issues from Jira Cloud.
// The OAuth exchange records the first accessible site's cloud id in the
// credential meta; API calls go through api.atlassian.com with it.
type issueProvider struct {
	oauth *oauth2.Config
	creds *Credentials
}

func newIssueProvider(cfg *config.Config, creds *Credentials) *issueProvider {
	return &issueProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.AtlassianClientID,
			ClientSecret: cfg.AtlassianClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes:       []string{"read:jira-work", "read:jira-user", "offline_access"},
			Endpoint:     atlassianEndpoint,
		},
		creds: creds,
	}
}

func (p *issueProvider) Kind() string { return domain.KindIssues }

func (p *issueProvider) Authorize(state string) string {
	return p.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("audience", "api.atlassian.com"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (p *issueProvider) ExchangeCode(ctx context.Context, code string) (*Credentials, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("atlassian code exchange failed: %w", err)
	}
	creds := credentialsFromToken(token, p.oauth.Scopes)

	// Resolve the accessible site so fetches know which cloud to hit
	cloudID, siteURL, err := p.accessibleResource(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	creds.Meta = map[string]string{"cloud_id": cloudID, "site_url": siteURL}
	return creds, nil
}

func (p *issueProvider) accessibleResource(ctx context.Context, accessToken string) (string, string, error) {
	var resources []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := p.getJSON(ctx, accessToken, "https://api.atlassian.com/oauth/token/accessible-resources", &resources); err != nil {
		return "", "", fmt.Errorf("failed to list accessible resources: %w", err)
	}
	if len(resources) == 0 {
		return "", "", fmt.Errorf("no accessible Jira site for this account")
	}
	return resources[0].ID, resources[0].URL, nil
}

func (p *issueProvider) Test(ctx context.Context) TestResult {
	if p.creds == nil || p.creds.AccessToken == "" {
		return errResult(fmt.Errorf("issue-tracker connector has no credentials"))
	}
	var me struct {
		AccountID string `json:"accountId"`
	}
	err := p.getJSON(ctx, p.creds.AccessToken, p.apiBase()+"/rest/api/3/myself", &me)
	if err != nil {
		return errResult(err)
	}
	return okResult()
}

func (p *issueProvider) Fetch(ctx context.Context) ([]RawItem, error) {
	if p.creds == nil || p.creds.AccessToken == "" {
		return nil, fmt.Errorf("issue-tracker connector has no credentials")
	}

	jql := url.QueryEscape("assignee = currentUser() AND statusCategory != Done ORDER BY updated DESC")
	endpoint := fmt.Sprintf("%s/rest/api/3/search?jql=%s&maxResults=%d&fields=summary,duedate", p.apiBase(), jql, issueFetchLimit)

	var result struct {
		Issues []struct {
			Key    string `json:"key"`
			Fields struct {
				Summary string `json:"summary"`
				DueDate string `json:"duedate"`
			} `json:"fields"`
		} `json:"issues"`
	}
	if err := p.getJSON(ctx, p.creds.AccessToken, endpoint, &result); err != nil {
		return nil, fmt.Errorf("jira search failed: %w", err)
	}

	siteURL := p.creds.Meta["site_url"]
	items := make([]RawItem, 0, len(result.Issues))
	for _, issue := range result.Issues {
		items = append(items, RawItem{
			ID:    issue.Key,
			Title: issue.Fields.Summary,
			URL:   siteURL + "/browse/" + issue.Key,
			Due:   issue.Fields.DueDate,
		})
	}
	return items, nil
}

func (p *issueProvider) apiBase() string {
	return "https://api.atlassian.com/ex/jira/" + p.creds.Meta["cloud_id"]
}

func (p *issueProvider) getJSON(ctx context.Context, accessToken, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("atlassian API error (%d): %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
