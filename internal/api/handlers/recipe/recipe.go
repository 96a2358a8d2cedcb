package recipe

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"ffridge/internal/api/handlers"
	"ffridge/internal/core/recipe"
	"ffridge/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateRequest 依食材生成食譜
type GenerateRequest struct {
	Ingredients []string `json:"ingredients"`
	// UseInventory 併入冰箱中的食材
	UseInventory bool `json:"use_inventory"`
	// Save 生成後直接存入食譜本
	Save bool `json:"save"`
}

// GenerateResponse 批次生成結果
type GenerateResponse struct {
	Recipes     []recipe.Recipe `json:"recipes"`
	Ingredients []string        `json:"ingredients"`
}

// IngredientSource 冰箱食材名稱
type IngredientSource interface {
	Names(ctx context.Context) ([]string, error)
}

// Handler 食譜處理器
type Handler struct {
	svc       *recipe.Service
	inventory IngredientSource
}

// NewHandler 創建食譜處理器，inventory 可為 nil
func NewHandler(svc *recipe.Service, inventory IngredientSource) *Handler {
	return &Handler{svc: svc, inventory: inventory}
}

// Register 註冊路由，ai 套用在會呼叫模型的路由
func (h *Handler) Register(g *gin.RouterGroup, ai ...gin.HandlerFunc) {
	g.POST("/generate", chain(ai, h.Generate)...)
	g.POST("/generate/single", chain(ai, h.GenerateSingle)...)
	g.GET("", h.List)
	g.POST("", h.Save)
	g.GET("/favorites", h.Favorites)
	g.GET("/quick", h.Quick)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/favorite", h.ToggleFavorite)
}

func chain(ai []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc(nil), ai...), h)
}

func (h *Handler) ingredients(ctx context.Context, req *GenerateRequest) ([]string, error) {
	names := append([]string(nil), req.Ingredients...)
	if req.UseInventory && h.inventory != nil {
		stored, err := h.inventory.Names(ctx)
		if err != nil {
			return nil, err
		}
		names = append(names, stored...)
	}
	return common.CleanStrings(names), nil
}

// Generate POST /recipes/generate，一次回傳多道食譜
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	names, err := h.ingredients(c.Request.Context(), &req)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", handlers.RequestID(c)),
		zap.Int("ingredients", len(names)),
	)
	recipes, err := h.svc.GenerateRecipes(c.Request.Context(), names)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	if req.Save {
		if err := h.svc.SaveAll(c.Request.Context(), recipes); err != nil {
			handlers.Error(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, GenerateResponse{Recipes: recipes, Ingredients: names})
}

// GenerateSingle POST /recipes/generate/single
func (h *Handler) GenerateSingle(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	names, err := h.ingredients(c.Request.Context(), &req)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	r, err := h.svc.GenerateRecipe(c.Request.Context(), names)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	if req.Save {
		if err := h.svc.Save(c.Request.Context(), r); err != nil {
			handlers.Error(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, r)
}

// List GET /recipes?favorites=&difficulty=&max_time=&q=
func (h *Handler) List(c *gin.Context) {
	q := recipe.Query{
		Search: c.Query("q"),
	}
	if v := c.Query("favorites"); v != "" {
		fav, err := strconv.ParseBool(v)
		if err != nil {
			handlers.Error(c, common.NewValidationError("favorites must be a boolean"))
			return
		}
		q.FavoritesOnly = fav
	}
	if v := c.Query("difficulty"); v != "" {
		// 未知難度交由服務層回報驗證錯誤
		q.Difficulty = recipe.Difficulty(strings.ToUpper(strings.TrimSpace(v)))
	}
	if v := c.Query("max_time"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			handlers.Error(c, common.NewValidationError("max_time must be a positive integer"))
			return
		}
		q.MaxMinutes = n
	}

	recipes, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// Favorites GET /recipes/favorites
func (h *Handler) Favorites(c *gin.Context) {
	recipes, err := h.svc.Favorites(c.Request.Context())
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// Quick GET /recipes/quick
func (h *Handler) Quick(c *gin.Context) {
	recipes, err := h.svc.Quick(c.Request.Context())
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// Save POST /recipes
func (h *Handler) Save(c *gin.Context) {
	var r recipe.Recipe
	if err := c.ShouldBindJSON(&r); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	if err := h.svc.Save(c.Request.Context(), &r); err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// Get GET /recipes/:id
func (h *Handler) Get(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Delete DELETE /recipes/:id
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlers.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleFavorite POST /recipes/:id/favorite
func (h *Handler) ToggleFavorite(c *gin.Context) {
	r, err := h.svc.ToggleFavorite(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
