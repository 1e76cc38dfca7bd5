package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velux/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product aggregate.
type ProductModel struct {
	BaseModel
	Name          string                 `gorm:"type:varchar(200);not null;index"`
	Description   string                 `gorm:"type:text"`
	Features      StringList             `gorm:"type:text"`
	Image1Key     string                 `gorm:"column:image1_key;type:varchar(255)"`
	Image2Key     string                 `gorm:"column:image2_key;type:varchar(255)"`
	Image3Key     string                 `gorm:"column:image3_key;type:varchar(255)"`
	Price         decimal.Decimal        `gorm:"type:decimal(12,2);not null"`
	OnSale        bool                   `gorm:"not null;default:false"`
	SalePrice     decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	Available     bool                   `gorm:"not null;index"`
	InStock       bool                   `gorm:"not null"`
	Priority      int                    `gorm:"not null;default:0"`
	CategoryLinks []ProductCategoryModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: m.Description,
		Features:    []string(m.Features),
		CategoryIDs: make([]uuid.UUID, 0, len(m.CategoryLinks)),
		ImageKeys:   [catalog.MaxImages]string{m.Image1Key, m.Image2Key, m.Image3Key},
		Price:       m.Price,
		OnSale:      m.OnSale,
		SalePrice:   m.SalePrice,
		Available:   m.Available,
		InStock:     m.InStock,
		Priority:    m.Priority,
	}
	if p.Features == nil {
		p.Features = make([]string, 0)
	}
	for _, link := range m.CategoryLinks {
		p.CategoryIDs = append(p.CategoryIDs, link.CategoryID)
	}
	return p
}

// ProductModelFromDomain creates a persistence model from a domain Product.
// Category links are written by the repository, not through this model.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Name:        p.Name,
		Description: p.Description,
		Features:    StringList(p.Features),
		Image1Key:   p.ImageKeys[0],
		Image2Key:   p.ImageKeys[1],
		Image3Key:   p.ImageKeys[2],
		Price:       p.Price,
		OnSale:      p.OnSale,
		SalePrice:   p.SalePrice,
		Available:   p.Available,
		InStock:     p.InStock,
		Priority:    p.Priority,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// ProductCategoryModel links products and categories
type ProductCategoryModel struct {
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName returns the table name for GORM
func (ProductCategoryModel) TableName() string {
	return "product_categories"
}

// CategoryModel is the persistence model for the Category entity
type CategoryModel struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_name"`
	Description string `gorm:"type:text"`
	ImageKey    string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: m.Description,
		ImageKey:    m.ImageKey,
	}
}

// CategoryModelFromDomain creates a persistence model from a domain Category
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{
		Name:        c.Name,
		Description: c.Description,
		ImageKey:    c.ImageKey,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// PackModel is the persistence model for the Pack entity
type PackModel struct {
	BaseModel
	Kind          string          `gorm:"type:varchar(20);not null;default:'';index"`
	Name          string          `gorm:"type:varchar(100);not null"`
	Audience      string          `gorm:"type:varchar(300);not null"`
	Details       StringList      `gorm:"type:text"`
	ImageKey      string          `gorm:"type:varchar(255)"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OnSale        bool            `gorm:"not null;default:false"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Duration      string          `gorm:"type:varchar(30)"`
	SessionLength string          `gorm:"type:varchar(30)"`
	Available     bool            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PackModel) TableName() string {
	return "packs"
}

// ToDomain converts the persistence model to a domain Pack
func (m *PackModel) ToDomain() *catalog.Pack {
	p := &catalog.Pack{
		BaseEntity:    m.BaseModel.ToDomain(),
		Kind:          catalog.PackKind(m.Kind),
		Name:          m.Name,
		Audience:      m.Audience,
		Details:       []string(m.Details),
		ImageKey:      m.ImageKey,
		Price:         m.Price,
		OnSale:        m.OnSale,
		SalePrice:     m.SalePrice,
		Duration:      m.Duration,
		SessionLength: m.SessionLength,
		Available:     m.Available,
	}
	if p.Details == nil {
		p.Details = make([]string, 0)
	}
	return p
}

// PackModelFromDomain creates a persistence model from a domain Pack
func PackModelFromDomain(p *catalog.Pack) *PackModel {
	m := &PackModel{
		Kind:          string(p.Kind),
		Name:          p.Name,
		Audience:      p.Audience,
		Details:       StringList(p.Details),
		ImageKey:      p.ImageKey,
		Price:         p.Price,
		OnSale:        p.OnSale,
		SalePrice:     p.SalePrice,
		Duration:      p.Duration,
		SessionLength: p.SessionLength,
		Available:     p.Available,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
