package recipe

import (
	"fmt"
	"net/url"
	"strings"

	"ffridge/internal/pkg/common"
)

// ResponseParser 將 AI 文字回應轉為食譜，永不回傳錯誤；無法解析時回傳空切片
type ResponseParser interface {
	Parse(raw string, requested []string) []Recipe
}

// Mode 依呼叫意圖選擇解析策略
type Mode int

const (
	// ModeBatch 一次五道食譜，JSON 陣列
	ModeBatch Mode = iota
	// ModeSingle 單一食譜，逐行標籤格式
	ModeSingle
)

func (m Mode) String() string {
	switch m {
	case ModeBatch:
		return "batch"
	case ModeSingle:
		return "single"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParserOption 解析器選項
type ParserOption func(*stamper)

// WithClock 設定時間來源
func WithClock(c common.Clock) ParserOption {
	return func(s *stamper) { s.now = c }
}

// WithIDGenerator 設定 ID 產生器
func WithIDGenerator(gen func() string) ParserOption {
	return func(s *stamper) { s.newID = gen }
}

// NewParser 依模式建立解析器
func NewParser(mode Mode, opts ...ParserOption) ResponseParser {
	if mode == ModeSingle {
		return NewLineParser(opts...)
	}
	return NewJSONBatchParser(opts...)
}

// stamper 為解析出的食譜補上 ID 與建立時間
type stamper struct {
	now   common.Clock
	newID func() string
}

func newStamper(opts []ParserOption) stamper {
	s := stamper{now: common.SystemClock, newID: common.GenerateUUID}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// finish 填入預設值、ID 與時間戳
func (s stamper) finish(r Recipe) Recipe {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		r.Title = DefaultTitle
	}
	r.Description = strings.TrimSpace(r.Description)
	if r.Description == "" {
		r.Description = DefaultDescription
	}
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Instructions == nil {
		r.Instructions = []string{}
	}
	if r.CookingTime <= 0 {
		r.CookingTime = DefaultCookingTime
	}
	if !r.Difficulty.Valid() {
		r.Difficulty = Medium
	}
	if !hasURLScheme(r.ImageURL) {
		r.ImageURL = PlaceholderImageURL(r.Title)
	} else {
		r.ImageURL = strings.TrimSpace(r.ImageURL)
	}
	r.ID = s.newID()
	r.CreatedAt = common.NowMillis(s.now)
	r.IsFavorite = false
	return r
}

func hasURLScheme(u string) bool {
	u = strings.ToLower(strings.TrimSpace(u))
	return strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://")
}

// PlaceholderImageURL 以標題產生固定的預設圖片網址
func PlaceholderImageURL(title string) string {
	words := strings.Fields(title)
	for i, w := range words {
		words[i] = url.QueryEscape(w)
	}
	return "https://source.unsplash.com/800x600/?" + strings.Join(words, "+") + ",food"
}
