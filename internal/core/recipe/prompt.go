package recipe

import (
	"fmt"
	"strings"

	"ffridge/internal/pkg/common"
)

// BuildBatchPrompt 產生一次五道食譜的 prompt，avoid 為希望避開的既有菜名
func BuildBatchPrompt(ingredients []string, avoid []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate exactly %d unique, delicious recipes using these ingredients: %s\n\n", BatchSize, common.StringSliceToString(ingredients))
	sb.WriteString(`IMPORTANT: Respond ONLY with a valid JSON array. No markdown, no code blocks, just the JSON array.

Format each recipe exactly like this:
[
  {
    "title": "Recipe Name",
    "description": "A 2-sentence appetizing description",
    "ingredients": ["ingredient 1", "ingredient 2", "ingredient 3"],
    "instructions": ["Step 1", "Step 2", "Step 3"],
    "cookingTime": 30,
    "difficulty": "EASY",
    "imageUrl": "https://images.unsplash.com/photo-recipe-related?w=800"
  }
]

Rules:
1. Use real Unsplash image URLs related to the dish (search for the recipe name)
2. Each recipe must use at least 2 of the provided ingredients
3. Include common pantry items if needed (oil, salt, pepper, etc.)
4. Keep instructions clear and numbered
5. Difficulty must be: EASY, MEDIUM, or HARD
6. Cooking time in minutes (realistic estimate)
7. Make recipes diverse (different cuisines and cooking methods)
`)
	if len(avoid) > 0 {
		fmt.Fprintf(&sb, "8. Do not repeat these recipes: %s\n", common.StringSliceToString(avoid))
	}
	sb.WriteString("\nReturn ONLY the JSON array, nothing else.")
	return sb.String()
}

// BuildSinglePrompt 產生單一食譜的逐行格式 prompt
func BuildSinglePrompt(ingredients []string) string {
	return fmt.Sprintf(`Create one delicious recipe using these ingredients: %s

Respond using exactly these labels, one per line, with no other text:
TITLE: recipe name
DESCRIPTION: one or two appetizing sentences
INGREDIENTS: ingredient 1, ingredient 2, ingredient 3
INSTRUCTIONS: 1. first step | 2. second step | 3. third step
COOKING_TIME: minutes as a number
DIFFICULTY: EASY, MEDIUM, or HARD`, common.StringSliceToString(ingredients))
}
