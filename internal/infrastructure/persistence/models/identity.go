package models

import (
	"time"

	"github.com/compucar/backend/internal/domain/identity"
)

// UserModel is the persistence model for user accounts
type UserModel struct {
	AggregateModel
	Email          string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash   string `gorm:"type:varchar(255);not null"`
	DisplayName    string `gorm:"type:varchar(200)"`
	Role           string `gorm:"type:varchar(20);not null"`
	Status         string `gorm:"type:varchar(20);not null"`
	TelegramChatID int64  `gorm:"default:0;index"`
	LastLoginAt    *time.Time
}

// TableName returns the table name for UserModel
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain user
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		DisplayName:    m.DisplayName,
		Role:           identity.Role(m.Role),
		Status:         identity.UserStatus(m.Status),
		TelegramChatID: m.TelegramChatID,
		LastLoginAt:    m.LastLoginAt,
	}
	m.PopulateAggregateRoot(&u.BaseAggregateRoot)
	return u
}

// UserModelFromDomain converts a domain user to its persistence model
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		DisplayName:    u.DisplayName,
		Role:           string(u.Role),
		Status:         string(u.Status),
		TelegramChatID: u.TelegramChatID,
		LastLoginAt:    u.LastLoginAt,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}
