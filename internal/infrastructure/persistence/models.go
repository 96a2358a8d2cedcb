package persistence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"ffridge/internal/core/chat"
	"ffridge/internal/core/inventory"
	"ffridge/internal/core/recipe"
)

// IngredientModel 食材資料表
type IngredientModel struct {
	ID         string `gorm:"primaryKey;size:36"`
	Name       string `gorm:"size:100;not null"`
	Quantity   string `gorm:"size:32"`
	Unit       string `gorm:"size:32"`
	Category   string `gorm:"size:20;index"`
	ExpiryDate *int64 `gorm:"index"`
	AddedDate  int64
	Notes      string
	ImageURI   string
	Calories   *int
}

func (IngredientModel) TableName() string { return "ingredients" }

// RecipeModel 已存食譜資料表
type RecipeModel struct {
	ID           string      `gorm:"primaryKey;size:36"`
	Title        string      `gorm:"not null"`
	Description  string
	Ingredients  StringSlice `gorm:"type:json"`
	Instructions StringSlice `gorm:"type:json"`
	CookingTime  int         `gorm:"index"`
	Difficulty   string      `gorm:"size:10;index"`
	ImageURL     string
	// epoch 毫秒，不走 gorm 自動時間戳
	Created      int64       `gorm:"column:created_at;index"`
	IsFavorite   bool        `gorm:"index"`
}

func (RecipeModel) TableName() string { return "recipes" }

// ChatMessageModel 對話紀錄資料表，Seq 保證同毫秒訊息的順序
type ChatMessageModel struct {
	Seq       uint64 `gorm:"primaryKey;autoIncrement"`
	ID        string `gorm:"uniqueIndex;size:36"`
	Text      string `gorm:"not null"`
	Role      string `gorm:"size:10"`
	Timestamp int64  `gorm:"index"`
}

func (ChatMessageModel) TableName() string { return "chat_messages" }

// StringSlice 以 JSON 儲存的字串陣列
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func ingredientToModel(i *inventory.Ingredient) *IngredientModel {
	return &IngredientModel{
		ID:         i.ID,
		Name:       i.Name,
		Quantity:   i.Quantity,
		Unit:       i.Unit,
		Category:   string(i.Category),
		ExpiryDate: i.ExpiryDate,
		AddedDate:  i.AddedDate,
		Notes:      i.Notes,
		ImageURI:   i.ImageURI,
		Calories:   i.Calories,
	}
}

func (m *IngredientModel) toDomain() inventory.Ingredient {
	return inventory.Ingredient{
		ID:         m.ID,
		Name:       m.Name,
		Quantity:   m.Quantity,
		Unit:       m.Unit,
		Category:   inventory.Category(m.Category),
		ExpiryDate: m.ExpiryDate,
		AddedDate:  m.AddedDate,
		Notes:      m.Notes,
		ImageURI:   m.ImageURI,
		Calories:   m.Calories,
	}
}

func recipeToModel(r *recipe.Recipe) *RecipeModel {
	return &RecipeModel{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Ingredients:  StringSlice(r.Ingredients),
		Instructions: StringSlice(r.Instructions),
		CookingTime:  r.CookingTime,
		Difficulty:   string(r.Difficulty),
		ImageURL:     r.ImageURL,
		Created:      r.CreatedAt,
		IsFavorite:   r.IsFavorite,
	}
}

func (m *RecipeModel) toDomain() recipe.Recipe {
	ingredients := []string(m.Ingredients)
	if ingredients == nil {
		ingredients = []string{}
	}
	instructions := []string(m.Instructions)
	if instructions == nil {
		instructions = []string{}
	}
	return recipe.Recipe{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		Ingredients:  ingredients,
		Instructions: instructions,
		CookingTime:  m.CookingTime,
		Difficulty:   recipe.Difficulty(m.Difficulty),
		ImageURL:     m.ImageURL,
		CreatedAt:    m.Created,
		IsFavorite:   m.IsFavorite,
	}
}

func messageToModel(m *chat.Message) *ChatMessageModel {
	return &ChatMessageModel{ID: m.ID, Text: m.Text, Role: string(m.Role), Timestamp: m.Timestamp}
}

func (m *ChatMessageModel) toDomain() chat.Message {
	return chat.Message{ID: m.ID, Text: m.Text, Role: chat.Role(m.Role), Timestamp: m.Timestamp}
}
