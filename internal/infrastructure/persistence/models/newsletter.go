package models

import "github.com/velux/backend/internal/domain/newsletter"

// SubscriptionModel is the persistence model for a newsletter subscription
type SubscriptionModel struct {
	BaseModel
	Email string `gorm:"type:varchar(254);not null;uniqueIndex:idx_newsletter_subscriptions_email"`
	Name  string `gorm:"type:varchar(100);not null;default:''"`
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "newsletter_subscriptions"
}

// ToDomain converts the persistence model to a domain Subscription
func (m *SubscriptionModel) ToDomain() *newsletter.Subscription {
	return &newsletter.Subscription{
		BaseEntity: m.BaseModel.ToDomain(),
		Email:      m.Email,
		Name:       m.Name,
	}
}

// SubscriptionModelFromDomain creates a persistence model from a domain Subscription
func SubscriptionModelFromDomain(s *newsletter.Subscription) *SubscriptionModel {
	m := &SubscriptionModel{Email: s.Email, Name: s.Name}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
