package ingest

import (
	"context"
	"errors"
	"testing"

	conndomain "mimir-backend/internal/connector/domain"
	"mimir-backend/internal/connector/provider"
	"mimir-backend/internal/task/domain"
	"mimir-backend/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConnectorRepo struct {
	updates []*conndomain.Connector
}

func (r *recordingConnectorRepo) Upsert(connector *conndomain.Connector) error { return nil }
func (r *recordingConnectorRepo) FindByUserID(userID string) ([]*conndomain.Connector, error) {
	return nil, nil
}
func (r *recordingConnectorRepo) FindByUserAndKind(userID, kind string) (*conndomain.Connector, error) {
	return nil, nil
}
func (r *recordingConnectorRepo) FindConnected(userID string) ([]*conndomain.Connector, error) {
	return nil, nil
}
func (r *recordingConnectorRepo) Update(connector *conndomain.Connector) error {
	copied := *connector
	r.updates = append(r.updates, &copied)
	return nil
}

type failingOpener struct{}

func (failingOpener) Unseal(connector *conndomain.Connector) (*provider.Credentials, error) {
	return nil, errors.New("sealed blob corrupt")
}

func TestRunCycleMarksFailedConnectorAndContinues(t *testing.T) {
	connectors := &recordingConnectorRepo{}
	svc := NewService(&stubTaskRepo{}, connectors, nil, nil, provider.NewRegistry(&config.Config{}), failingOpener{})

	created, err := svc.RunCycle(context.Background(), "user-1", []*conndomain.Connector{
		{ID: "c-1", UserID: "user-1", Kind: domain.KindMail, Status: conndomain.StatusConnected},
		{ID: "c-2", UserID: "user-1", Kind: domain.KindIssues, Status: conndomain.StatusConnected},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	// Both connectors failed softly and both were recorded as failed.
	require.Len(t, connectors.updates, 2)
	for _, update := range connectors.updates {
		assert.Equal(t, conndomain.StatusFailed, update.Status)
		assert.NotEmpty(t, update.Message)
		assert.NotNil(t, update.LastChecked)
	}
}

func TestRunCycleRejectsUnknownKindSoftly(t *testing.T) {
	connectors := &recordingConnectorRepo{}
	svc := NewService(&stubTaskRepo{}, connectors, nil, nil, provider.NewRegistry(&config.Config{}), passOpener{})

	created, err := svc.RunCycle(context.Background(), "user-1", []*conndomain.Connector{
		{ID: "c-1", UserID: "user-1", Kind: "telegraph", Status: conndomain.StatusConnected},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	require.Len(t, connectors.updates, 1)
	assert.Equal(t, conndomain.StatusFailed, connectors.updates[0].Status)
}

type passOpener struct{}

func (passOpener) Unseal(connector *conndomain.Connector) (*provider.Credentials, error) {
	return &provider.Credentials{AccessToken: "token"}, nil
}
