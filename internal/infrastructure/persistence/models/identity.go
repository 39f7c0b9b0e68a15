package models

import (
	"time"

	"github.com/meterly/backend/internal/domain/identity"
)

// UserModel maps an account row in the users table.
type UserModel struct {
	AggregateModel
	Email        string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	LastLoginAt  *time.Time `gorm:"index"`
}

func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the row to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.root(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain fills the row from a domain User.
func (m *UserModel) FromDomain(u *identity.User) {
	m.setRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain builds a fresh row from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
