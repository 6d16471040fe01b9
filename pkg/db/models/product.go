package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the persisted catalog listing.
type Product struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string              `gorm:"column:name;not null"`
	Brand        string              `gorm:"column:brand;not null;default:''"`
	Category     string              `gorm:"column:category;not null;index"`
	Price        decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	OldPrice     decimal.NullDecimal `gorm:"column:old_price;type:numeric(12,2)"`
	Description  string              `gorm:"column:description;not null;default:''"`
	Rating       float64             `gorm:"column:rating;not null;default:0"`
	ReviewCount  int                 `gorm:"column:review_count;not null;default:0"`
	Images       []string            `gorm:"column:images;type:jsonb;serializer:json"`
	Tags         []string            `gorm:"column:tags;type:jsonb;serializer:json"`
	IsNew        bool                `gorm:"column:is_new;not null;default:false"`
	IsFeatured   bool                `gorm:"column:is_featured;not null;default:false"`
	IsOnSale     bool                `gorm:"column:is_on_sale;not null;default:false"`
	IsBestseller bool                `gorm:"column:is_bestseller;not null;default:false"`
	Stock        int                 `gorm:"column:stock;not null;default:0"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
