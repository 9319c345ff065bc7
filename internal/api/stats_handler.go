package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"LottoStats/internal/model"
	"LottoStats/internal/repository"
	"LottoStats/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StatsHandler 统计查询接口（展示层消费统计数据的唯一入口）
type StatsHandler struct {
	statsService *service.StatsService
	logger       *logrus.Logger
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(db *gorm.DB, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: service.NewStatsService(db, logger),
		logger:       logger,
	}
}

// gameParam 解析并校验 game 查询参数
func gameParam(c *gin.Context) (model.GameType, bool) {
	game := model.GameType(c.Query("game"))
	if _, err := model.ConfigFor(game); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return game, true
}

// numbersParam 解析逗号分隔的号码列表参数
func numbersParam(c *gin.Context) ([]int, bool) {
	raw := c.Query("numbers")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "numbers 参数不能为空"})
		return nil, false
	}
	parts := strings.Split(raw, ",")
	numbers := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("号码 %q 非法", p)})
			return nil, false
		}
		numbers = append(numbers, n)
	}
	return numbers, true
}

func yearFilter(c *gin.Context) repository.StatsFilter {
	yearStart, _ := strconv.Atoi(c.Query("year_start"))
	yearEnd, _ := strconv.Atoi(c.Query("year_end"))
	return repository.StatsFilter{YearStart: yearStart, YearEnd: yearEnd}
}

// Frequency 号码出现频率排行
// GET /api/stats/frequency?game=大樂透&kind=main&year_start=2020&year_end=2024&limit=10
func (h *StatsHandler) Frequency(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}
	kind := model.NumberKind(c.DefaultQuery("kind", string(model.NumberKindMain)))
	if kind != model.NumberKindMain && kind != model.NumberKindSpecial {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("未知号码类型: %s", kind)})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	counts, err := h.statsService.NumberFrequency(c.Request.Context(), game, kind, yearFilter(c), limit)
	if err != nil {
		h.logger.WithError(err).Error("NumberFrequency failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game, "kind": kind, "items": counts})
}

// LatestDraws 最近开奖记录
// GET /api/draws/latest?game=大樂透&limit=10
func (h *StatsHandler) LatestDraws(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	draws, err := h.statsService.LatestDraws(c.Request.Context(), game, limit)
	if err != nil {
		h.logger.WithError(err).Error("LatestDraws failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game, "items": draws})
}

// NumberStats 全部号码的排名与机率
// GET /api/stats/numbers?game=大樂透
func (h *StatsHandler) NumberStats(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}
	stats, err := h.statsService.NumberStats(c.Request.Context(), game)
	if err != nil {
		h.logger.WithError(err).Error("NumberStats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game, "items": stats})
}

// Combination 号码组合同时开出的期数
// GET /api/stats/combination?game=大樂透&numbers=1,2,3
func (h *StatsHandler) Combination(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}
	numbers, ok := numbersParam(c)
	if !ok {
		return
	}
	count, err := h.statsService.CombinationFrequency(c.Request.Context(), game, numbers, yearFilter(c))
	if err != nil {
		h.logger.WithError(err).Error("CombinationFrequency failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game, "numbers": numbers, "count": count})
}

// Yearly 年度统计
// GET /api/stats/yearly?game=威力彩
func (h *StatsHandler) Yearly(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}
	stats, err := h.statsService.StatisticsByYear(c.Request.Context(), game)
	if err != nil {
		h.logger.WithError(err).Error("StatisticsByYear failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game, "items": stats})
}

// ColdHot 冷热号
// GET /api/stats/coldhot?game=今彩539&window=100
func (h *StatsHandler) ColdHot(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}
	window, _ := strconv.Atoi(c.DefaultQuery("window", "100"))
	if window <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "window 必须为正整数"})
		return
	}
	result, err := h.statsService.ColdHotNumbers(c.Request.Context(), game, window)
	if err != nil {
		h.logger.WithError(err).Error("ColdHotNumbers failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game, "window": window, "hot_numbers": result.Hot, "cold_numbers": result.Cold})
}

// Match 候选号码对历史开奖的比对
// GET /api/stats/match?game=大樂透&numbers=1,2,3,4,5,6
func (h *StatsHandler) Match(c *gin.Context) {
	game, ok := gameParam(c)
	if !ok {
		return
	}
	numbers, ok := numbersParam(c)
	if !ok {
		return
	}
	result, err := h.statsService.MatchHistory(c.Request.Context(), game, numbers)
	if err != nil {
		h.logger.WithError(err).Error("MatchHistory failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
