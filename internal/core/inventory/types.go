// Package inventory 冰箱庫存管理
package inventory

import (
	"strings"

	"ffridge/internal/core/expiry"
)

// Category 食材分類
type Category string

const (
	Vegetables Category = "VEGETABLES"
	Fruits     Category = "FRUITS"
	Dairy      Category = "DAIRY"
	Meat       Category = "MEAT"
	Fish       Category = "FISH"
	Grains     Category = "GRAINS"
	Beverages  Category = "BEVERAGES"
	Condiments Category = "CONDIMENTS"
	Snacks     Category = "SNACKS"
	Frozen     Category = "FROZEN"
	Bakery     Category = "BAKERY"
	Spices     Category = "SPICES"
	Canned     Category = "CANNED"
	Other      Category = "OTHER"
)

// Categories 所有分類（顯示順序）
var Categories = []Category{
	Vegetables, Fruits, Dairy, Meat, Fish, Grains, Beverages,
	Condiments, Snacks, Frozen, Bakery, Spices, Canned, Other,
}

var categoryIcons = map[Category]string{
	Vegetables: "🥬",
	Fruits:     "🍎",
	Dairy:      "🥛",
	Meat:       "🥩",
	Fish:       "🐟",
	Grains:     "🌾",
	Beverages:  "🥤",
	Condiments: "🧂",
	Snacks:     "🍪",
	Frozen:     "🧊",
	Bakery:     "🍞",
	Spices:     "🌶️",
	Canned:     "🥫",
	Other:      "📦",
}

// ParseCategory 不分大小寫解析分類
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := categoryIcons[c]
	return c, ok
}

// Icon 分類圖示
func (c Category) Icon() string {
	if icon, ok := categoryIcons[c]; ok {
		return icon
	}
	return categoryIcons[Other]
}

// CommonUnits 常用單位
var CommonUnits = []string{"pcs", "kg", "g", "lb", "oz", "L", "mL", "cup", "tbsp", "tsp", "box", "bag", "can", "bottle", "pack"}

// 驗證限制
const (
	MinNameLength = 2
	MaxNameLength = 100
	MinQuantity   = 0.01
	MaxQuantity   = 9999.99
)

// Ingredient 食材
type Ingredient struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Quantity   string   `json:"quantity"`
	Unit       string   `json:"unit"`
	Category   Category `json:"category"`
	ExpiryDate *int64   `json:"expiry_date,omitempty"` // epoch 毫秒，nil 表示不會過期
	AddedDate  int64    `json:"added_date"`
	Notes      string   `json:"notes,omitempty"`
	ImageURI   string   `json:"image_uri,omitempty"`
	Calories   *int     `json:"calories,omitempty"`
}

// ExpiryMillis 實作 expiry.Dated
func (i Ingredient) ExpiryMillis() *int64 { return i.ExpiryDate }

var _ expiry.Dated = Ingredient{}

// Entry 含到期狀態的食材
type Entry struct {
	Ingredient
	Status expiry.Status `json:"status"`
	Badge  expiry.Badge  `json:"badge"`
}

// Overview 庫存概況
type Overview struct {
	Items  []Entry       `json:"items"`
	Total  int           `json:"total"`
	Counts expiry.Counts `json:"counts"`
}

// Stats 資料庫統計
type Stats struct {
	TotalIngredients   int64 `json:"total_ingredients"`
	ExpiredIngredients int64 `json:"expired_ingredients"`
	TotalRecipes       int64 `json:"total_recipes"`
	FavoriteRecipes    int64 `json:"favorite_recipes"`
}
