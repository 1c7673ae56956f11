package domain

import "time"

// Order is one sales line. The pipeline only reads orders; they arrive from
// the store systems upstream of this service.
type Order struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantCode string    `gorm:"column:tenant_code;not null;index:idx_orders_tenant_client" json:"tenant_code"`
	ClientCode string    `gorm:"column:client_code;not null;index:idx_orders_tenant_client" json:"client_code"`
	ProductKey string    `gorm:"column:product_key;not null" json:"product_key"`
	Quantity   int       `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice  float64   `gorm:"column:unit_price;type:numeric" json:"unit_price"`
	Total      float64   `gorm:"column:total;type:numeric" json:"total"`
	OrderedAt  time.Time `gorm:"column:ordered_at;index" json:"ordered_at"`
}

func (Order) TableName() string {
	return "orders"
}
