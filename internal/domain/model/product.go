package model

import (
	"time"

	"gorm.io/gorm"
)

// 刃・本体の素材
type Material string

const (
	MaterialStainless Material = "stainless_steel"
	MaterialCarbon    Material = "carbon_steel"
	MaterialDamascus  Material = "damascus_steel"
	MaterialCeramic   Material = "ceramic"
	MaterialTitanium  Material = "titanium"
)

// 商品の種類
type ProductType string

const (
	ProductTypeChefKnife    ProductType = "chef_knife"
	ProductTypePettyKnife   ProductType = "petty_knife"
	ProductTypeSantoku      ProductType = "santoku"
	ProductTypeOutdoorKnife ProductType = "outdoor_knife"
	ProductTypePocketKnife  ProductType = "pocket_knife"
	ProductTypeSharpener    ProductType = "sharpener"
	ProductTypeCuttingBoard ProductType = "cutting_board"
	ProductTypeAccessory    ProductType = "accessory"
)

// ハンドル（柄）の構造
type HandleType string

const (
	HandleTypeFixed     HandleType = "fixed"
	HandleTypeFolding   HandleType = "folding"
	HandleTypeMultiTool HandleType = "multi_tool"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	SKU         string `gorm:"column:sku;type:varchar(100);not null;uniqueIndex" json:"sku"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	//価格は最小通貨単位（円）。compare_at_priceは割引表示用
	Price          int64  `gorm:"not null" json:"price"`
	CompareAtPrice *int64 `gorm:"column:compare_at_price" json:"compare_at_price,omitempty"`
	Stock          int64  `gorm:"not null" json:"stock"`

	//分類
	CategoryID  int64       `gorm:"not null;index" json:"category_id"`
	Brand       string      `gorm:"type:varchar(255)" json:"brand,omitempty"`
	Material    Material    `gorm:"type:varchar(50)" json:"material,omitempty"`
	ProductType ProductType `gorm:"type:varchar(50);not null" json:"product_type"`
	HandleType  HandleType  `gorm:"type:varchar(50)" json:"handle_type,omitempty"`

	//表示フラグ（それぞれ独立に設定できる）
	IsNew      bool `gorm:"not null;default:false" json:"is_new"`
	IsFeatured bool `gorm:"not null;default:false" json:"is_featured"`
	IsOnSale   bool `gorm:"not null;default:false" json:"is_on_sale"`

	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
