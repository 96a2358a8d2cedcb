package inventory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SortOption 排序方式
type SortOption string

const (
	SortNameAsc       SortOption = "NAME_ASC"
	SortNameDesc      SortOption = "NAME_DESC"
	SortDateAddedAsc  SortOption = "DATE_ADDED_ASC"
	SortDateAddedDesc SortOption = "DATE_ADDED_DESC"
	SortExpiryAsc     SortOption = "EXPIRY_ASC"
	SortExpiryDesc    SortOption = "EXPIRY_DESC"
	SortQuantityAsc   SortOption = "QUANTITY_ASC"
	SortQuantityDesc  SortOption = "QUANTITY_DESC"
)

// AllCategories 不篩選分類
const AllCategories = "All"

// ParseSortOption 解析排序方式，空字串為新增時間新到舊
func ParseSortOption(s string) (SortOption, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return SortDateAddedDesc, nil
	}
	switch o := SortOption(s); o {
	case SortNameAsc, SortNameDesc, SortDateAddedAsc, SortDateAddedDesc,
		SortExpiryAsc, SortExpiryDesc, SortQuantityAsc, SortQuantityDesc:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort option %q", s)
	}
}

// Filter 列表條件
type Filter struct {
	Category string // 空字串或 All 表示全部
	Search   string // 名稱或分類包含（不分大小寫）
	Sort     SortOption
}

// Apply 篩選並排序，不修改輸入
func (f Filter) Apply(items []Ingredient) []Ingredient {
	out := make([]Ingredient, 0, len(items))
	query := strings.ToLower(strings.TrimSpace(f.Search))
	category := strings.TrimSpace(f.Category)

	for _, it := range items {
		if category != "" && category != AllCategories && !strings.EqualFold(string(it.Category), category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(it.Name), query) &&
			!strings.Contains(strings.ToLower(string(it.Category)), query) {
			continue
		}
		out = append(out, it)
	}

	sortIngredients(out, f.Sort)
	return out
}

func sortIngredients(items []Ingredient, opt SortOption) {
	var less func(a, b Ingredient) bool
	switch opt {
	case SortNameAsc:
		less = func(a, b Ingredient) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortNameDesc:
		less = func(a, b Ingredient) bool { return strings.ToLower(a.Name) > strings.ToLower(b.Name) }
	case SortDateAddedAsc:
		less = func(a, b Ingredient) bool { return a.AddedDate < b.AddedDate }
	case SortExpiryAsc:
		// 無期限排最後
		less = func(a, b Ingredient) bool { return expiryOr(a, maxInt64) < expiryOr(b, maxInt64) }
	case SortExpiryDesc:
		// 無期限排最後（以最小值參與降冪）
		less = func(a, b Ingredient) bool { return expiryOr(a, minInt64) > expiryOr(b, minInt64) }
	case SortQuantityAsc:
		less = func(a, b Ingredient) bool { return quantityOf(a) < quantityOf(b) }
	case SortQuantityDesc:
		less = func(a, b Ingredient) bool { return quantityOf(a) > quantityOf(b) }
	default:
		less = func(a, b Ingredient) bool { return a.AddedDate > b.AddedDate }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

const (
	maxInt64 = int64(^uint64(0) >> 1)
	minInt64 = -maxInt64 - 1
)

func expiryOr(i Ingredient, def int64) int64 {
	if i.ExpiryDate == nil {
		return def
	}
	return *i.ExpiryDate
}

// quantityOf 非數字的數量視為 0
func quantityOf(i Ingredient) float64 {
	q, err := strconv.ParseFloat(strings.TrimSpace(i.Quantity), 64)
	if err != nil {
		return 0
	}
	return q
}
