package repository

import (
	"time"

	"mimir-backend/internal/connector/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConnectorRepository defines the interface for connector data access
type ConnectorRepository interface {
	// Upsert creates or replaces the (user, kind) row
	Upsert(connector *domain.Connector) error

	// FindByUserID returns all of a user's connectors
	FindByUserID(userID string) ([]*domain.Connector, error)

	// FindByUserAndKind returns the (user, kind) row, nil when absent
	FindByUserAndKind(userID, kind string) (*domain.Connector, error)

	// FindConnected returns the user's connectors with status connected
	FindConnected(userID string) ([]*domain.Connector, error)

	// Update updates an existing connector
	Update(connector *domain.Connector) error
}

type gormConnectorRepository struct {
	db *gorm.DB
}

func NewGormConnectorRepository(db *gorm.DB) ConnectorRepository {
	return &gormConnectorRepository{db: db}
}

func (r *gormConnectorRepository) Upsert(connector *domain.Connector) error {
	if connector.ID == "" {
		connector.ID = uuid.New().String()
	}
	now := time.Now()
	if connector.CreatedAt.IsZero() {
		connector.CreatedAt = now
	}
	connector.UpdatedAt = now
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "scopes", "access_token", "refresh_token",
			"expires_at", "meta", "message", "updated_at",
		}),
	}).Create(connector).Error
}

func (r *gormConnectorRepository) FindByUserID(userID string) ([]*domain.Connector, error) {
	var connectors []*domain.Connector
	err := r.db.Where("user_id = ?", userID).Order("kind").Find(&connectors).Error
	return connectors, err
}

func (r *gormConnectorRepository) FindByUserAndKind(userID, kind string) (*domain.Connector, error) {
	var connector domain.Connector
	err := r.db.Where("user_id = ? AND kind = ?", userID, kind).First(&connector).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &connector, nil
}

func (r *gormConnectorRepository) FindConnected(userID string) ([]*domain.Connector, error) {
	var connectors []*domain.Connector
	err := r.db.Where("user_id = ? AND status = ?", userID, domain.StatusConnected).
		Find(&connectors).Error
	return connectors, err
}

func (r *gormConnectorRepository) Update(connector *domain.Connector) error {
	connector.UpdatedAt = time.Now()
	return r.db.Save(connector).Error
}
