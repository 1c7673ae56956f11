package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.products (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     tenant_code     TEXT NOT NULL,
//     product_key     TEXT NOT NULL,
//     product_name    TEXT,
//     family          TEXT,
//     price           NUMERIC,
//     margin          NUMERIC,
//     popularity      NUMERIC,
//     taste_profile   JSONB,
//     is_active       BOOLEAN DEFAULT TRUE,
//     created_at      TIMESTAMPTZ DEFAULT NOW(),
//     UNIQUE (tenant_code, product_key)
// );

type Product struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantCode  string `gorm:"column:tenant_code;not null;uniqueIndex:idx_products_tenant_key" json:"tenant_code"`
	ProductKey  string `gorm:"column:product_key;not null;uniqueIndex:idx_products_tenant_key" json:"product_key"`
	ProductName string `gorm:"column:product_name;type:text" json:"product_name"`

	// Family groups products for cross-sell affinity ("Rouge", "Blanc", ...).
	Family string `gorm:"column:family;type:text" json:"family"`

	Price      float64 `gorm:"column:price;type:numeric" json:"price"`
	Margin     float64 `gorm:"column:margin;type:numeric" json:"margin"`
	Popularity float64 `gorm:"column:popularity;type:numeric;default:0" json:"popularity"`

	// Optional taste/aroma dimensions keyed by dimension name, each in [0,1].
	TasteProfile datatypes.JSONMap `gorm:"column:taste_profile;type:jsonb" json:"taste_profile"`

	IsActive  bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}
