package recipe

import (
	"regexp"
	"strconv"
	"strings"

	"ffridge/internal/pkg/common"
)

// LineParser 解析逐行標籤格式的單一食譜
//
//	TITLE: ...
//	DESCRIPTION: ...
//	INGREDIENTS: a, b, c
//	INSTRUCTIONS: 1. ... | 2. ...
//	COOKING_TIME: 25 minutes
//	DIFFICULTY: EASY
type LineParser struct {
	stamper
}

// NewLineParser 創建逐行解析器
func NewLineParser(opts ...ParserOption) *LineParser {
	return &LineParser{stamper: newStamper(opts)}
}

var (
	stepNumberPattern = regexp.MustCompile(`(?i)^(?:step\s*\d+\s*[.):\-]?|\d+\s*[.):\-])\s*`)
	digitsPattern     = regexp.MustCompile(`\d+`)
)

// Parse 實作 ResponseParser；沒有任何可辨識的標籤時回傳空切片
func (p *LineParser) Parse(raw string, requested []string) []Recipe {
	var (
		r     Recipe
		found bool
	)

	for _, line := range strings.Split(common.StripCodeFence(raw), "\n") {
		label, value, ok := splitLabel(line)
		if !ok {
			continue
		}

		switch label {
		case "TITLE":
			r.Title = value
		case "DESCRIPTION":
			r.Description = value
		case "INGREDIENTS":
			r.Ingredients = common.CleanStrings(strings.Split(value, ","))
		case "INSTRUCTIONS":
			r.Instructions = splitSteps(value)
		case "COOKING_TIME":
			if d := digitsPattern.FindString(value); d != "" {
				r.CookingTime, _ = strconv.Atoi(d)
			}
		case "DIFFICULTY":
			r.Difficulty = ParseDifficulty(value)
		default:
			continue
		}
		found = true
	}

	if !found {
		return []Recipe{}
	}
	if len(r.Ingredients) == 0 {
		r.Ingredients = common.CleanStrings(requested)
	}
	return []Recipe{p.finish(r)}
}

// splitLabel 取出行首的 LABEL: value，容許 markdown 的 * 與 # 前綴
func splitLabel(line string) (label, value string, ok bool) {
	line = strings.TrimLeft(strings.TrimSpace(line), "*#- \t")
	idx := strings.IndexByte(line, ':')
	if idx <= 0 {
		return "", "", false
	}

	label = strings.ToUpper(strings.Trim(line[:idx], "* \t"))
	label = strings.ReplaceAll(label, " ", "_")
	value = strings.TrimSpace(strings.Trim(strings.TrimSpace(line[idx+1:]), "*"))
	return label, value, true
}

func splitSteps(value string) []string {
	parts := strings.Split(value, "|")
	steps := make([]string, 0, len(parts))
	for _, part := range parts {
		step := strings.TrimSpace(stepNumberPattern.ReplaceAllString(strings.TrimSpace(part), ""))
		if step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}
