package models

import (
	"github.com/google/uuid"
	"github.com/velux/backend/internal/domain/favorite"
	"github.com/velux/backend/internal/domain/review"
)

// ReviewModel is the persistence model for the Review entity
type ReviewModel struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_reviews_product_user_comment,priority:1"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_reviews_product_user_comment,priority:2"`
	Comment   string    `gorm:"type:text;not null;uniqueIndex:idx_reviews_product_user_comment,priority:3"`
	Rating    int       `gorm:"not null;default:5"`
	Visible   bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts the persistence model to a domain Review
func (m *ReviewModel) ToDomain() *review.Review {
	return &review.Review{
		BaseEntity: m.BaseModel.ToDomain(),
		ProductID:  m.ProductID,
		UserID:     m.UserID,
		Comment:    m.Comment,
		Rating:     m.Rating,
		Visible:    m.Visible,
	}
}

// ReviewModelFromDomain creates a persistence model from a domain Review
func ReviewModelFromDomain(r *review.Review) *ReviewModel {
	m := &ReviewModel{
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Comment:   r.Comment,
		Rating:    r.Rating,
		Visible:   r.Visible,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// FavoriteModel is the persistence model for a user's favorite product
type FavoriteModel struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_product,priority:2;index"`
}

// TableName returns the table name for GORM
func (FavoriteModel) TableName() string {
	return "favorites"
}

// ToDomain converts the persistence model to a domain Favorite
func (m *FavoriteModel) ToDomain() *favorite.Favorite {
	return &favorite.Favorite{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		ProductID:  m.ProductID,
	}
}

// FavoriteModelFromDomain creates a persistence model from a domain Favorite
func FavoriteModelFromDomain(f *favorite.Favorite) *FavoriteModel {
	m := &FavoriteModel{UserID: f.UserID, ProductID: f.ProductID}
	m.FromDomainBaseEntity(f.BaseEntity)
	return m
}
