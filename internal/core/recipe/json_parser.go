package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"ffridge/internal/pkg/common"

	"go.uber.org/zap"
)

// JSONBatchParser 解析 AI 回傳的 JSON 食譜陣列
//
// 每個元素獨立解析；單一元素型別錯誤時略過，遇到語法錯誤則停止掃描但保留已解析的結果。
type JSONBatchParser struct {
	stamper
}

// NewJSONBatchParser 創建 JSON 批次解析器
func NewJSONBatchParser(opts ...ParserOption) *JSONBatchParser {
	return &JSONBatchParser{stamper: newStamper(opts)}
}

// Parse 實作 ResponseParser
func (p *JSONBatchParser) Parse(raw string, _ []string) []Recipe {
	content := common.StripCodeFence(raw)
	payload, ok := common.ExtractBetween(content, '[', ']')
	if !ok {
		common.LogDebug("AI 回應中找不到 JSON 陣列", zap.Int("length", len(raw)))
		return []Recipe{}
	}

	recipes := p.scan(payload)
	if len(recipes) == 0 {
		// 模型偶爾回傳未加引號的鍵
		if repaired := common.QuoteJSONKeys(payload); repaired != payload {
			recipes = p.scan(repaired)
		}
	}
	return recipes
}

// scan 逐一解碼陣列元素
func (p *JSONBatchParser) scan(payload string) []Recipe {
	recipes := []Recipe{}

	dec := json.NewDecoder(strings.NewReader(payload))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('[') {
		return recipes
	}

	for i := 0; dec.More(); i++ {
		var elem json.RawMessage
		if err := dec.Decode(&elem); err != nil {
			common.LogWarn("食譜陣列語法錯誤，停止解析",
				zap.Int("index", i),
				zap.Int("parsed", len(recipes)),
				zap.Error(err),
			)
			break
		}

		r, err := decodeRecipe(elem)
		if err != nil {
			common.LogDebug("略過無法解析的食譜", zap.Int("index", i), zap.Error(err))
			continue
		}
		recipes = append(recipes, p.finish(r))
	}
	return recipes
}

var errNotObject = errors.New("recipe element is not an object")

// decodeRecipe 寬鬆解析單一食譜物件
func decodeRecipe(elem json.RawMessage) (Recipe, error) {
	var obj map[string]any
	if err := common.ParseJSONBytes(elem, &obj); err != nil {
		return Recipe{}, fmt.Errorf("%w: %v", errNotObject, err)
	}
	if obj == nil {
		return Recipe{}, errNotObject
	}

	return Recipe{
		Title:        stringField(obj, "title", "name"),
		Description:  stringField(obj, "description"),
		Ingredients:  stringList(obj, "ingredients"),
		Instructions: stringList(obj, "instructions", "steps"),
		CookingTime:  intField(obj, DefaultCookingTime, "cookingTime", "cooking_time"),
		Difficulty:   ParseDifficulty(stringField(obj, "difficulty")),
		ImageURL:     stringField(obj, "imageUrl", "image_url"),
	}, nil
}

func lookup(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// stringField 取字串欄位，數字與布林轉為文字
func stringField(obj map[string]any, keys ...string) string {
	v, ok := lookup(obj, keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// stringList 取字串陣列，略過非字串與空白項目
func stringList(obj map[string]any, keys ...string) []string {
	v, ok := lookup(obj, keys...)
	if !ok {
		return []string{}
	}
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// intField 取整數欄位，接受數字或數字字串，小數直接捨去
func intField(obj map[string]any, def int, keys ...string) int {
	v, ok := lookup(obj, keys...)
	if !ok {
		return def
	}

	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return def
	}

	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) && math.Abs(f) < math.MaxInt32 {
		return int(f)
	}
	return def
}
