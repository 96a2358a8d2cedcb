package ingredient

import (
	"net/http"

	"ffridge/internal/api/handlers"
	"ffridge/internal/core/inventory"
	"ffridge/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Request 新增或更新食材
type Request struct {
	Name       string `json:"name" binding:"required"`
	Quantity   string `json:"quantity"`
	Unit       string `json:"unit"`
	Category   string `json:"category"`
	ExpiryDate *int64 `json:"expiry_date"` // epoch 毫秒
	Notes      string `json:"notes"`
	ImageURI   string `json:"image_uri"`
	Calories   *int   `json:"calories"`
}

func (r *Request) toIngredient(id string) *inventory.Ingredient {
	return &inventory.Ingredient{
		ID:         id,
		Name:       r.Name,
		Quantity:   r.Quantity,
		Unit:       r.Unit,
		Category:   inventory.Category(r.Category),
		ExpiryDate: r.ExpiryDate,
		Notes:      r.Notes,
		ImageURI:   r.ImageURI,
		Calories:   r.Calories,
	}
}

// CategoryInfo 分類與圖示
type CategoryInfo struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Handler 食材處理器
type Handler struct {
	svc *inventory.Service
}

// NewHandler 創建食材處理器
func NewHandler(svc *inventory.Service) *Handler {
	return &Handler{svc: svc}
}

// Register 註冊路由
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/overview", h.Overview)
	g.GET("/expiring", h.Expiring)
	g.GET("/expired", h.Expired)
	g.POST("/cleanup", h.Cleanup)
	g.GET("/categories", h.Categories)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func filterFromQuery(c *gin.Context) (inventory.Filter, error) {
	sort, err := inventory.ParseSortOption(c.Query("sort"))
	if err != nil {
		return inventory.Filter{}, common.NewValidationError(err.Error())
	}
	return inventory.Filter{
		Category: c.Query("category"),
		Search:   c.Query("q"),
		Sort:     sort,
	}, nil
}

// List GET /ingredients?category=&q=&sort=
func (h *Handler) List(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	items, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Overview GET /ingredients/overview，含到期狀態與統計
func (h *Handler) Overview(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	ov, err := h.svc.Overview(c.Request.Context(), f)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// Expiring GET /ingredients/expiring
func (h *Handler) Expiring(c *gin.Context) {
	items, err := h.svc.Expiring(c.Request.Context())
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Expired GET /ingredients/expired
func (h *Handler) Expired(c *gin.Context) {
	items, err := h.svc.Expired(c.Request.Context())
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Cleanup POST /ingredients/cleanup
func (h *Handler) Cleanup(c *gin.Context) {
	n, err := h.svc.CleanupExpired(c.Request.Context())
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// Categories GET /ingredients/categories
func (h *Handler) Categories(c *gin.Context) {
	cats := make([]CategoryInfo, 0, len(inventory.Categories))
	for _, cat := range inventory.Categories {
		cats = append(cats, CategoryInfo{Name: string(cat), Icon: cat.Icon()})
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats, "units": inventory.CommonUnits})
}

// Create POST /ingredients
func (h *Handler) Create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	ing := req.toIngredient("")
	if err := h.svc.Add(c.Request.Context(), ing); err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

// Get GET /ingredients/:id
func (h *Handler) Get(c *gin.Context) {
	ing, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	st := h.svc.Classify(*ing)
	c.JSON(http.StatusOK, inventory.Entry{Ingredient: *ing, Status: st, Badge: st.Badge()})
}

// Update PUT /ingredients/:id
func (h *Handler) Update(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	ing := req.toIngredient(c.Param("id"))
	if err := h.svc.Update(c.Request.Context(), ing); err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

// Delete DELETE /ingredients/:id
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handlers.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats GET /stats，食材與食譜統計
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
