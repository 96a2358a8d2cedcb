package chat

import (
	"net/http"

	"ffridge/internal/api/handlers"
	"ffridge/internal/core/chat"

	"github.com/gin-gonic/gin"
)

// SendRequest 送出訊息
type SendRequest struct {
	Text string `json:"text" binding:"required"`
}

// Handler 對話處理器
type Handler struct {
	svc *chat.Service
}

// NewHandler 創建對話處理器
func NewHandler(svc *chat.Service) *Handler {
	return &Handler{svc: svc}
}

// Register 註冊路由，ai 套用在送出訊息
func (h *Handler) Register(g *gin.RouterGroup, ai ...gin.HandlerFunc) {
	g.GET("/messages", h.History)
	g.POST("/messages", append(ai, h.Send)...)
	g.DELETE("/messages", h.Clear)
}

// Send POST /chat/messages，回傳模型回覆
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}
	reply, err := h.svc.SendMessage(c.Request.Context(), req.Text)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// History GET /chat/messages
func (h *Handler) History(c *gin.Context) {
	msgs, err := h.svc.History(c.Request.Context())
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// Clear DELETE /chat/messages
func (h *Handler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context()); err != nil {
		handlers.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
