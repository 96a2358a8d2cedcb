package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ffridge/internal/core/ai/service"
	"ffridge/internal/core/chat"
	"ffridge/internal/core/inventory"
	"ffridge/internal/core/recipe"
	"ffridge/internal/infrastructure/config"
	"ffridge/internal/infrastructure/persistence"
	"ffridge/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batchReply = "```json\n" + `[
  {"title": "Tomato Pasta", "description": "Bright and quick", "ingredients": ["tomato", "pasta"],
   "instructions": ["Boil pasta", "Add sauce"], "cookingTime": 20, "difficulty": "EASY"},
  {"title": "Shakshuka", "ingredients": ["tomato", "eggs"], "instructions": ["Simmer", "Crack eggs"],
   "cookingTime": 35, "difficulty": "medium", "imageUrl": "https://images.example.com/shakshuka.jpg"},
  "not a recipe"
]` + "\n```"

const singleReply = `TITLE: Egg Fried Rice
DESCRIPTION: Weeknight classic.
INGREDIENTS: rice, eggs, scallion
INSTRUCTIONS: 1. Scramble eggs | 2. Fry rice | 3. Combine
COOKING_TIME: 15 minutes
DIFFICULTY: EASY`

type fakeAI struct {
	reply func(req *service.Request) (string, error)
}

func (f *fakeAI) ProcessRequest(_ context.Context, req *service.Request) (*service.Response, error) {
	content, err := f.reply(req)
	if err != nil {
		return nil, err
	}
	return &service.Response{Content: content, Provider: "fake"}, nil
}

func defaultReply(req *service.Request) (string, error) {
	last := req.Messages[len(req.Messages)-1].Content
	switch {
	case strings.Contains(last, "JSON array"):
		return batchReply, nil
	case strings.Contains(last, "TITLE:"):
		return singleReply, nil
	default:
		return "Keep herbs wrapped in a damp towel. 🌿", nil
	}
}

type testServer struct {
	router *gin.Engine
	ai     *fakeAI
	now    time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	common.InitNopLogger()

	db, err := persistence.Open(config.DatabaseConfig{Path: persistence.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = persistence.Close(db) })
	sqlDB, err := db.DB()
	require.NoError(t, err)

	ts := &testServer{
		ai:  &fakeAI{reply: defaultReply},
		now: time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return ts.now }

	recipes := recipe.NewService(ts.ai, persistence.NewRecipeRepository(db))
	inv := inventory.NewService(persistence.NewIngredientRepository(db), recipes, inventory.Options{
		WarningDays: 3,
		Location:    time.UTC,
		Clock:       clock,
	})
	chats := chat.NewService(ts.ai, persistence.NewChatRepository(db), chat.Options{Clock: clock})

	cfg := &config.Config{
		App:         config.AppConfig{Version: "test"},
		DedupWindow: time.Minute,
	}
	ts.router = SetupRouter(cfg, Services{
		Inventory: inv,
		Recipes:   recipes,
		Chat:      chats,
		DB:        sqlDB,
		Provider:  "fake",
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (ts *testServer) daysFromNow(d int) int64 {
	return ts.now.AddDate(0, 0, d).UnixMilli()
}

func TestHealthRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.Equal(t, "fake", body["provider"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/ready", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/live", nil).Code)
}

func TestIngredientRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/ingredients", map[string]interface{}{
		"name": "Milk", "quantity": "1", "unit": "L", "category": "dairy", "expiry_date": ts.daysFromNow(-1),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	milk := decode[inventory.Ingredient](t, w)
	assert.Equal(t, inventory.Dairy, milk.Category)
	assert.NotEmpty(t, milk.ID)

	w = ts.do(t, http.MethodPost, "/api/v1/ingredients", map[string]interface{}{
		"name": "Eggs", "quantity": "6", "category": "DAIRY", "expiry_date": ts.daysFromNow(1),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	eggs := decode[inventory.Ingredient](t, w)

	w = ts.do(t, http.MethodPost, "/api/v1/ingredients", map[string]interface{}{"name": "Rice", "category": "GRAINS"})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("validation", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/ingredients", map[string]interface{}{"name": "X"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, common.ErrCodeInvalidRequest, decode[common.ErrorResponse](t, w).Code)

		w = ts.do(t, http.MethodPost, "/api/v1/ingredients", map[string]interface{}{"quantity": "1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = ts.do(t, http.MethodGet, "/api/v1/ingredients?sort=shuffle", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list and search", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/ingredients?category=DAIRY&sort=NAME_ASC", nil)
		require.Equal(t, http.StatusOK, w.Code)
		items := decode[[]inventory.Ingredient](t, w)
		require.Len(t, items, 2)
		assert.Equal(t, "Eggs", items[0].Name)

		w = ts.do(t, http.MethodGet, "/api/v1/ingredients?q=ric", nil)
		require.Len(t, decode[[]inventory.Ingredient](t, w), 1)
	})

	t.Run("get with badge", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/ingredients/"+eggs.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode[map[string]interface{}](t, w)
		badge := body["badge"].(map[string]interface{})
		assert.Equal(t, "Expires tomorrow", badge["label"])
		assert.Equal(t, "critical", badge["severity"])

		w = ts.do(t, http.MethodGet, "/api/v1/ingredients/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, common.ErrCodeNotFound, decode[common.ErrorResponse](t, w).Code)
	})

	t.Run("overview", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/ingredients/overview", nil)
		require.Equal(t, http.StatusOK, w.Code)
		ov := decode[struct {
			Total  int `json:"total"`
			Counts struct {
				ExpiringSoon int `json:"expiring_soon"`
				Expired      int `json:"expired"`
			} `json:"counts"`
		}](t, w)
		assert.Equal(t, 3, ov.Total)
		assert.Equal(t, 1, ov.Counts.ExpiringSoon)
		assert.Equal(t, 1, ov.Counts.Expired)
	})

	t.Run("expiring and expired", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/ingredients/expiring", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]map[string]interface{}](t, w), 1)

		w = ts.do(t, http.MethodGet, "/api/v1/ingredients/expired", nil)
		require.Equal(t, http.StatusOK, w.Code)
		expired := decode[[]map[string]interface{}](t, w)
		require.Len(t, expired, 1)
		assert.Equal(t, milk.ID, expired[0]["id"])
	})

	t.Run("update", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, "/api/v1/ingredients/"+eggs.ID, map[string]interface{}{
			"name": "Free Range Eggs", "quantity": "12", "category": "DAIRY",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Free Range Eggs", decode[inventory.Ingredient](t, w).Name)

		w = ts.do(t, http.MethodPut, "/api/v1/ingredients/missing", map[string]interface{}{"name": "Ghost"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("stats and cleanup", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/stats", nil)
		require.Equal(t, http.StatusOK, w.Code)
		stats := decode[inventory.Stats](t, w)
		assert.EqualValues(t, 3, stats.TotalIngredients)
		assert.EqualValues(t, 1, stats.ExpiredIngredients)

		w = ts.do(t, http.MethodPost, "/api/v1/ingredients/cleanup", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 1, decode[map[string]int](t, w)["deleted"])
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/v1/ingredients/"+eggs.ID, nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/v1/ingredients/"+eggs.ID, nil).Code)
	})

	t.Run("categories", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/ingredients/categories", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode[struct {
			Categories []struct{ Name, Icon string } `json:"categories"`
			Units      []string                      `json:"units"`
		}](t, w)
		assert.Len(t, body.Categories, len(inventory.Categories))
		assert.Contains(t, body.Units, "kg")
	})
}

func TestRecipeRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/ingredients", map[string]interface{}{"name": "Tomato", "category": "VEGETABLES"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/recipes/generate", map[string]interface{}{
		"ingredients": []string{"pasta"}, "use_inventory": true, "save": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	gen := decode[struct {
		Recipes     []recipe.Recipe `json:"recipes"`
		Ingredients []string        `json:"ingredients"`
	}](t, w)
	assert.Equal(t, []string{"pasta", "Tomato"}, gen.Ingredients)
	require.Len(t, gen.Recipes, 2)
	assert.Equal(t, recipe.Easy, gen.Recipes[0].Difficulty)
	assert.Equal(t, recipe.Medium, gen.Recipes[1].Difficulty)
	assert.Equal(t, "https://source.unsplash.com/800x600/?Tomato+Pasta,food", gen.Recipes[0].ImageURL)

	w = ts.do(t, http.MethodGet, "/api/v1/recipes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	saved := decode[[]recipe.Recipe](t, w)
	require.Len(t, saved, 2)

	t.Run("single", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/recipes/generate/single", map[string]interface{}{"ingredients": []string{"rice", "eggs"}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		r := decode[recipe.Recipe](t, w)
		assert.Equal(t, "Egg Fried Rice", r.Title)
		assert.Equal(t, 15, r.CookingTime)
		assert.Equal(t, []string{"Scramble eggs", "Fry rice", "Combine"}, r.Instructions)
	})

	t.Run("favorite toggle", func(t *testing.T) {
		id := saved[0].ID
		w := ts.do(t, http.MethodPost, "/api/v1/recipes/"+id+"/favorite", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[recipe.Recipe](t, w).IsFavorite)

		w = ts.do(t, http.MethodGet, "/api/v1/recipes/favorites", nil)
		require.Len(t, decode[[]recipe.Recipe](t, w), 1)

		w = ts.do(t, http.MethodGet, "/api/v1/recipes?favorites=true", nil)
		require.Len(t, decode[[]recipe.Recipe](t, w), 1)
	})

	t.Run("filters", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/recipes/quick", nil)
		quick := decode[[]recipe.Recipe](t, w)
		require.Len(t, quick, 1)
		assert.Equal(t, "Tomato Pasta", quick[0].Title)

		w = ts.do(t, http.MethodGet, "/api/v1/recipes?difficulty=medium", nil)
		require.Len(t, decode[[]recipe.Recipe](t, w), 1)

		w = ts.do(t, http.MethodGet, "/api/v1/recipes?q=SHAK", nil)
		require.Len(t, decode[[]recipe.Recipe](t, w), 1)

		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/v1/recipes?difficulty=insane", nil).Code)
		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/v1/recipes?max_time=-1", nil).Code)
	})

	t.Run("save and delete", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/recipes", map[string]interface{}{"title": "Toast", "cooking_time": 5})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		toast := decode[recipe.Recipe](t, w)
		assert.Equal(t, recipe.Medium, toast.Difficulty)

		w = ts.do(t, http.MethodGet, "/api/v1/recipes/"+toast.ID, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/v1/recipes/"+toast.ID, nil).Code)
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/v1/recipes/"+toast.ID, nil).Code)

		w = ts.do(t, http.MethodPost, "/api/v1/recipes", map[string]interface{}{"title": "  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no ingredients", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/recipes/generate", map[string]interface{}{"ingredients": []string{" "}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unusable response", func(t *testing.T) {
		ts.ai.reply = func(*service.Request) (string, error) { return "Sorry, I can't help with that.", nil }
		defer func() { ts.ai.reply = defaultReply }()

		w := ts.do(t, http.MethodPost, "/api/v1/recipes/generate", map[string]interface{}{"ingredients": []string{"kale"}})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, common.ErrCodeNoRecipes, decode[common.ErrorResponse](t, w).Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		ts.ai.reply = func(*service.Request) (string, error) { return "", errors.New("connection reset") }
		defer func() { ts.ai.reply = defaultReply }()

		w := ts.do(t, http.MethodPost, "/api/v1/recipes/generate", map[string]interface{}{"ingredients": []string{"leek"}})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, common.ErrCodeAIService, decode[common.ErrorResponse](t, w).Code)
	})

	t.Run("duplicate submit", func(t *testing.T) {
		body := map[string]interface{}{"ingredients": []string{"beans"}}
		require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/v1/recipes/generate", body).Code)
		assert.Equal(t, http.StatusTooManyRequests, ts.do(t, http.MethodPost, "/api/v1/recipes/generate", body).Code)
	})
}

func TestChatRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/chat/messages", map[string]string{"text": "How do I store herbs?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reply := decode[chat.Message](t, w)
	assert.Equal(t, chat.RoleModel, reply.Role)
	assert.Contains(t, reply.Text, "damp towel")

	w = ts.do(t, http.MethodGet, "/api/v1/chat/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]chat.Message](t, w)
	require.Len(t, history, 2)
	assert.Equal(t, chat.RoleUser, history[0].Role)

	w = ts.do(t, http.MethodPost, "/api/v1/chat/messages", map[string]string{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.ai.reply = func(*service.Request) (string, error) { return "", errors.New("no route to host") }
	w = ts.do(t, http.MethodPost, "/api/v1/chat/messages", map[string]string{"text": "Still there?"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, decode[common.ErrorResponse](t, w).Message, "trouble connecting")

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/v1/chat/messages", nil).Code)
	w = ts.do(t, http.MethodGet, "/api/v1/chat/messages", nil)
	assert.Empty(t, decode[[]chat.Message](t, w))
}
