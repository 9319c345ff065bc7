package api

import (
	"net/http"

	"LottoStats/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PickHandler 选号接口。返回值中固定携带"不改变真实中奖机率"的声明
type PickHandler struct {
	pickService *service.PickService
	logger      *logrus.Logger
}

// NewPickHandler 创建 PickHandler
func NewPickHandler(db *gorm.DB, logger *logrus.Logger) *PickHandler {
	return &PickHandler{
		pickService: service.NewPickService(db, logger),
		logger:      logger,
	}
}

// SmartPick 智慧选号（Top 30 均匀随机）
// GET /api/picks/smart?game=大樂透
func (h *PickHandler) SmartPick(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}
	result, err := h.pickService.SmartPick(c.Request.Context(), game)
	if err != nil {
		h.logger.WithError(err).Error("SmartPick failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// MixedPick 混合策略选号（热号+冷号+惊喜号）
// GET /api/picks/mixed?game=大樂透
func (h *PickHandler) MixedPick(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}
	result, err := h.pickService.MixedPick(c.Request.Context(), game)
	if err != nil {
		h.logger.WithError(err).Error("MixedPick failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
