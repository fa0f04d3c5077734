package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber   string    `gorm:"size:32;uniqueIndex;not null" json:"order_number"`
	CustomerPhone string    `gorm:"size:20;not null;index" json:"customer_phone"`
	CustomerName  string    `gorm:"size:100" json:"customer_name"`
	Status        string    `gorm:"size:20;not null;default:pending;index" json:"status"`
	PaymentStatus string    `gorm:"size:20;not null;default:unpaid" json:"payment_status"`
	PaymentURL    string    `json:"payment_url,omitempty"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	Timestamp
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	newID(&o.ID)
	return nil
}

// Total is the sum of quantity times unit price over the order's items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"product,omitempty"`
	Timestamp
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	newID(&i.ID)
	return nil
}

func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
