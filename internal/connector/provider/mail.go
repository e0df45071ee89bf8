package provider

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"mimir-backend/internal/task/domain"
	"mimir-backend/pkg/config"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"
	gomail "github.com/emersion/go-message/mail"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const mailFetchLimit = 25

// mailProvider reads unread mail as work items. Two modes: Gmail via the
// REST API when OAuth credentials are present, plain IMAP when the
// connector's meta carries an imap_host (password kept in the refresh
// credential slot).
type mailProvider struct {
	oauth *oauth2.Config
	creds *Credentials
}

func newMailProvider(cfg *config.Config, creds *Credentials) *mailProvider {
	return &mailProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes:       []string{gmail.GmailReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		creds: creds,
	}
}

func (p *mailProvider) Kind() string { return domain.KindMail }

func (p *mailProvider) Authorize(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (p *mailProvider) ExchangeCode(ctx context.Context, code string) (*Credentials, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange failed: %w", err)
	}
	return credentialsFromToken(token, p.oauth.Scopes), nil
}

func (p *mailProvider) Test(ctx context.Context) TestResult {
	if p.imapHost() != "" {
		c, err := p.dialIMAP()
		if err != nil {
			return errResult(err)
		}
		defer c.Logout()
		return okResult()
	}

	svc, err := p.gmailService(ctx)
	if err != nil {
		return errResult(err)
	}
	if _, err := svc.Users.GetProfile("me").Context(ctx).Do(); err != nil {
		return errResult(err)
	}
	return okResult()
}

func (p *mailProvider) Fetch(ctx context.Context) ([]RawItem, error) {
	if p.imapHost() != "" {
		return p.fetchIMAP()
	}
	return p.fetchGmail(ctx)
}

func (p *mailProvider) fetchGmail(ctx context.Context) ([]RawItem, error) {
	svc, err := p.gmailService(ctx)
	if err != nil {
		return nil, err
	}

	list, err := svc.Users.Messages.List("me").
		Q("is:unread category:primary").
		MaxResults(mailFetchLimit).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gmail list failed: %w", err)
	}

	items := make([]RawItem, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := svc.Users.Messages.Get("me", ref.Id).
			Format("metadata").MetadataHeaders("Subject").
			Context(ctx).Do()
		if err != nil {
			continue
		}
		item := RawItem{
			ID:      msg.Id,
			Snippet: msg.Snippet,
			URL:     "https://mail.google.com/mail/u/0/#inbox/" + msg.Id,
		}
		for _, h := range msg.Payload.Headers {
			if h.Name == "Subject" {
				item.Subject = h.Value
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *mailProvider) gmailService(ctx context.Context) (*gmail.Service, error) {
	if p.creds == nil || p.creds.AccessToken == "" {
		return nil, fmt.Errorf("mail connector has no credentials")
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
	svc, err := gmail.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return svc, nil
}

func (p *mailProvider) imapHost() string {
	if p.creds == nil {
		return ""
	}
	return p.creds.Meta["imap_host"]
}

func (p *mailProvider) dialIMAP() (*imapclient.Client, error) {
	host := p.imapHost()
	port := p.creds.Meta["imap_port"]
	if port == "" {
		port = "993"
	}
	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("invalid imap port %q", port)
	}

	c, err := imapclient.DialTLS(host+":"+port, nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial failed: %w", err)
	}
	if err := c.Login(p.creds.Meta["imap_user"], p.creds.RefreshToken); err != nil {
		c.Logout()
		return nil, fmt.Errorf("imap login failed: %w", err)
	}
	return c, nil
}

func (p *mailProvider) fetchIMAP() ([]RawItem, error) {
	c, err := p.dialIMAP()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("imap select failed: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search failed: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > mailFetchLimit {
		ids = ids[len(ids)-mailFetchLimit:]
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(ids...)
	section := &imap.BodySectionName{Peek: true}

	messages := make(chan *imap.Message, mailFetchLimit)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}, messages)
	}()

	var items []RawItem
	for msg := range messages {
		item := RawItem{ID: fmt.Sprintf("imap-%d", msg.Uid)}
		if msg.Envelope != nil {
			item.Subject = msg.Envelope.Subject
		}
		if body := msg.GetBody(section); body != nil {
			item.Snippet = firstTextPart(body)
		}
		items = append(items, item)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch failed: %w", err)
	}
	return items, nil
}

// firstTextPart extracts a short plain-text snippet from a raw message.
func firstTextPart(r io.Reader) string {
	mr, err := gomail.CreateReader(r)
	if err != nil {
		return ""
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			return ""
		}
		if _, ok := part.Header.(*gomail.InlineHeader); ok {
			buf, _ := io.ReadAll(io.LimitReader(part.Body, 280))
			return strings.TrimSpace(string(buf))
		}
	}
}

func credentialsFromToken(token *oauth2.Token, scopes []string) *Credentials {
	creds := &Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scopes:       scopes,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		creds.ExpiresAt = &expiry
	}
	return creds
}
