package recipe

import (
	"strings"
)

// Difficulty 料理難度
type Difficulty string

const (
	Easy   Difficulty = "EASY"
	Medium Difficulty = "MEDIUM"
	Hard   Difficulty = "HARD"
)

// ParseDifficulty 不分大小寫解析難度，無法辨識時回傳 Medium
func ParseDifficulty(s string) Difficulty {
	switch d := Difficulty(strings.ToUpper(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d
	default:
		return Medium
	}
}

// Valid 是否為已知難度
func (d Difficulty) Valid() bool {
	return d == Easy || d == Medium || d == Hard
}

// 預設值
const (
	DefaultTitle       = "Untitled Recipe"
	DefaultDescription = "Delicious homemade dish"
	DefaultCookingTime = 30
	QuickMaxMinutes    = 30
	// BatchSize 批次生成的食譜數量
	BatchSize = 5
)

// Recipe 食譜
type Recipe struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Ingredients  []string   `json:"ingredients"`
	Instructions []string   `json:"instructions"`
	CookingTime  int        `json:"cooking_time"` // 分鐘
	Difficulty   Difficulty `json:"difficulty"`
	ImageURL     string     `json:"image_url"`
	CreatedAt    int64      `json:"created_at"` // epoch 毫秒
	IsFavorite   bool       `json:"is_favorite"`
}

// Query 已存食譜查詢條件
type Query struct {
	FavoritesOnly bool
	Difficulty    Difficulty
	MaxMinutes    int
	Search        string
}
