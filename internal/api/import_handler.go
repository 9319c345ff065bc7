package api

import (
	"errors"
	"net/http"

	"LottoStats/internal/config"
	"LottoStats/internal/repository"
	"LottoStats/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ImportHandler 数据导入接口
type ImportHandler struct {
	importService *service.ImportService
	logger        *logrus.Logger
	cfg           *config.Config
}

// NewImportHandler 创建 ImportHandler
func NewImportHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config) *ImportHandler {
	return &ImportHandler{
		importService: service.NewImportService(db, logger, cfg),
		logger:        logger,
		cfg:           cfg,
	}
}

// RunImport 执行一次完整导入
// POST /api/import
func (h *ImportHandler) RunImport(c *gin.Context) {
	summary, err := h.importService.ImportAll(c.Request.Context(), h.cfg.Import.DataDir)
	if err != nil {
		h.logger.WithError(err).Error("ImportAll failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// LatestRun 最近一次导入的审计记录
// GET /api/import/latest
func (h *ImportHandler) LatestRun(c *gin.Context) {
	run, err := h.importService.LatestRun(c.Request.Context())
	if errors.Is(err, repository.ErrNoImportRun) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("LatestRun failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}
