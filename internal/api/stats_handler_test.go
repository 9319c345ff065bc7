package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"LottoStats/internal/model"
	"LottoStats/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.LotteryDraw{}, &model.LotteryNumber{}, &model.ImportRun{}))

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	r := gin.New()
	h := NewStatsHandler(db, logger)
	r.GET("/api/stats/frequency", h.Frequency)
	r.GET("/api/stats/combination", h.Combination)
	r.GET("/api/stats/coldhot", h.ColdHot)
	return r, db
}

func seedDraw(t *testing.T, db *gorm.DB, drawNumber string, mains []int) {
	t.Helper()
	numbers := make([]model.LotteryNumber, 0, len(mains))
	for i, n := range mains {
		numbers = append(numbers, model.LotteryNumber{Number: n, Kind: model.NumberKindMain, Position: i + 1})
	}
	_, err := repository.NewDrawRepository(db).ReplaceDraw(context.Background(), &model.LotteryDraw{
		GameType:   model.GameDailyCash,
		DrawNumber: drawNumber,
		DrawDate:   "2024-01-02",
		Year:       2024,
	}, numbers)
	require.NoError(t, err)
}

func TestFrequencyHandler(t *testing.T) {
	r, db := newTestRouter(t)
	seedDraw(t, db, "001", []int{5, 12, 18, 25, 33})
	seedDraw(t, db, "002", []int{5, 13, 19, 26, 34})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats/frequency?game=今彩539&limit=1", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Items []repository.NumberCount `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, 5, body.Items[0].Number)
	assert.Equal(t, int64(2), body.Items[0].Count)
}

func TestFrequencyHandler_UnknownGame(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats/frequency?game=刮刮樂", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCombinationHandler_BadNumbers(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats/combination?game=今彩539&numbers=1,x,3", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/stats/combination?game=今彩539", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestColdHotHandler_BadWindow(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stats/coldhot?game=今彩539&window=-1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
