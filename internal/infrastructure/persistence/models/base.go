package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/meterly/backend/internal/domain/shared"
)

// BaseModel carries the identity and timestamp columns every table
// shares. GORM fills CreatedAt and UpdatedAt; the ID is assigned in
// the domain layer before the row is written.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) setEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel adds the version column that backs optimistic
// locking on aggregate roots.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.entity(), Version: m.Version}
}

func (m *AggregateModel) setRoot(a shared.BaseAggregateRoot) {
	m.setEntity(a.BaseEntity)
	m.Version = a.Version
}

// OwnedAggregateModel adds the owning user column for rows that are
// scoped to a single account.
type OwnedAggregateModel struct {
	AggregateModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (m *OwnedAggregateModel) ownedRoot() shared.OwnedAggregateRoot {
	return shared.OwnedAggregateRoot{BaseAggregateRoot: m.root(), UserID: m.UserID}
}

func (m *OwnedAggregateModel) setOwnedRoot(o shared.OwnedAggregateRoot) {
	m.setRoot(o.BaseAggregateRoot)
	m.UserID = o.UserID
}
