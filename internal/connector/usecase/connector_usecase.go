package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mimir-backend/internal/connector/domain"
	"mimir-backend/internal/connector/provider"
	"mimir-backend/internal/connector/repository"
	"mimir-backend/pkg/config"
	"mimir-backend/pkg/crypto"
)

// ErrUnknownKind means the requested connector kind is not supported.
var ErrUnknownKind = errors.New("unknown connector kind")

// ConnectorUsecase drives the connector lifecycle: start an OAuth connect,
// complete the code exchange, probe connectivity. Tokens are sealed before
// they touch the repository.
type ConnectorUsecase interface {
	List(userID string) ([]*domain.Connector, error)
	StartConnect(userID, kind string) (string, error)
	CompleteOAuth(ctx context.Context, userID, kind, code string) error
	Test(ctx context.Context, userID, kind string) (provider.TestResult, error)

	// Unseal rebuilds plaintext provider credentials from a stored row.
	// Used by the ingest cycle; plaintext never leaves the call stack.
	Unseal(connector *domain.Connector) (*provider.Credentials, error)
}

type connectorUsecase struct {
	repo     repository.ConnectorRepository
	registry *provider.Registry
	cfg      *config.Config
}

func NewConnectorUsecase(repo repository.ConnectorRepository, registry *provider.Registry, cfg *config.Config) ConnectorUsecase {
	return &connectorUsecase{repo: repo, registry: registry, cfg: cfg}
}

func (u *connectorUsecase) List(userID string) ([]*domain.Connector, error) {
	return u.repo.FindByUserID(userID)
}

func (u *connectorUsecase) StartConnect(userID, kind string) (string, error) {
	p, err := u.registry.For(kind, nil)
	if err != nil {
		return "", ErrUnknownKind
	}

	connector := &domain.Connector{
		UserID: userID,
		Kind:   kind,
		Status: domain.StatusConnecting,
	}
	if err := u.repo.Upsert(connector); err != nil {
		return "", err
	}

	// State round-trips through the provider's OAuth consent screen and
	// identifies the (user, kind) on callback.
	state := userID + ":" + kind
	return p.Authorize(state), nil
}

func (u *connectorUsecase) CompleteOAuth(ctx context.Context, userID, kind, code string) error {
	p, err := u.registry.For(kind, nil)
	if err != nil {
		return ErrUnknownKind
	}

	creds, err := p.ExchangeCode(ctx, code)
	if err != nil {
		if markErr := u.markFailed(userID, kind, err); markErr != nil {
			log.Printf("[Connector] Failed to record exchange failure for %s/%s: %v", userID, kind, markErr)
		}
		return err
	}

	sealed, err := u.seal(creds)
	if err != nil {
		return err
	}
	sealed.UserID = userID
	sealed.Kind = kind
	sealed.Status = domain.StatusConnected
	sealed.Message = ""
	return u.repo.Upsert(sealed)
}

func (u *connectorUsecase) Test(ctx context.Context, userID, kind string) (provider.TestResult, error) {
	connector, err := u.repo.FindByUserAndKind(userID, kind)
	if err != nil {
		return provider.TestResult{}, err
	}
	if connector == nil {
		return provider.TestResult{}, ErrUnknownKind
	}

	creds, err := u.Unseal(connector)
	if err != nil {
		return provider.TestResult{}, err
	}
	p, err := u.registry.For(kind, creds)
	if err != nil {
		return provider.TestResult{}, ErrUnknownKind
	}

	result := p.Test(ctx)
	now := time.Now()
	connector.LastChecked = &now
	connector.Message = result.Message
	if result.Status == "ok" {
		connector.Status = domain.StatusConnected
	} else {
		connector.Status = domain.StatusFailed
	}
	if err := u.repo.Update(connector); err != nil {
		return result, err
	}
	return result, nil
}

func (u *connectorUsecase) Unseal(connector *domain.Connector) (*provider.Credentials, error) {
	creds := &provider.Credentials{
		Scopes:    connector.Scopes,
		ExpiresAt: connector.ExpiresAt,
		Meta:      connector.Meta,
	}
	var err error
	if connector.AccessToken != "" {
		creds.AccessToken, err = crypto.Open(connector.AccessToken, u.cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to unseal access credential: %w", err)
		}
	}
	if connector.RefreshToken != "" {
		creds.RefreshToken, err = crypto.Open(connector.RefreshToken, u.cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to unseal refresh credential: %w", err)
		}
	}
	return creds, nil
}

func (u *connectorUsecase) seal(creds *provider.Credentials) (*domain.Connector, error) {
	connector := &domain.Connector{
		Scopes:    creds.Scopes,
		ExpiresAt: creds.ExpiresAt,
		Meta:      creds.Meta,
	}
	var err error
	if creds.AccessToken != "" {
		connector.AccessToken, err = crypto.Seal(creds.AccessToken, u.cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to seal access credential: %w", err)
		}
	}
	if creds.RefreshToken != "" {
		connector.RefreshToken, err = crypto.Seal(creds.RefreshToken, u.cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to seal refresh credential: %w", err)
		}
	}
	return connector, nil
}

func (u *connectorUsecase) markFailed(userID, kind string, cause error) error {
	connector, err := u.repo.FindByUserAndKind(userID, kind)
	if err != nil || connector == nil {
		return err
	}
	connector.Status = domain.StatusFailed
	connector.Message = cause.Error()
	return u.repo.Update(connector)
}
