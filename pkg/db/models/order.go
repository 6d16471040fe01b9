package models

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a checkout that reached confirmation.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Reference      string               `gorm:"column:reference;not null;uniqueIndex:orders_reference_key"`
	UserID         uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	Status         enums.OrderStatus    `gorm:"column:status;not null;default:'placed'"`
	FullName       string               `gorm:"column:full_name;not null"`
	Address        string               `gorm:"column:address;not null"`
	City           string               `gorm:"column:city;not null"`
	State          string               `gorm:"column:state;not null"`
	Zip            string               `gorm:"column:zip;not null"`
	Country        string               `gorm:"column:country;not null"`
	Phone          string               `gorm:"column:phone;not null"`
	ShippingMethod enums.ShippingMethod `gorm:"column:shipping_method;not null"`
	ShippingFee    decimal.Decimal      `gorm:"column:shipping_fee;type:numeric(12,2);not null"`
	CouponCode     *string              `gorm:"column:coupon_code"`
	Discount       decimal.Decimal      `gorm:"column:discount;type:numeric(12,2);not null"`
	Subtotal       decimal.Decimal      `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Total          decimal.Decimal      `gorm:"column:total;type:numeric(12,2);not null"`
	Lines          []OrderLine          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderLine freezes the product name and price at the time of purchase.
type OrderLine struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	Position    int             `gorm:"column:position;not null;default:0"`
}

func (OrderLine) TableName() string { return "order_lines" }

func (l *OrderLine) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
