package service

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"LottoStats/internal/config"
	"LottoStats/internal/model"
	"LottoStats/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 每个测试独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // 内存库必须单连接，否则每个连接各一份库

	require.NoError(t, db.AutoMigrate(
		&model.LotteryDraw{},
		&model.LotteryNumber{},
		&model.ImportRun{},
	))
	return db
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func newTestConfig(dataDir string) *config.Config {
	return &config.Config{
		Import: config.ImportConfig{DataDir: dataDir, ErrorPreviewCap: 10},
	}
}

// seedDraw 写入一期测试数据（经由 DrawRepository，与生产路径一致）
func seedDraw(t *testing.T, db *gorm.DB, game model.GameType, drawNumber, date string, mains []int, special int, salesAmount, totalPrize *int64) {
	t.Helper()
	year, _ := strconv.Atoi(strings.SplitN(date, "-", 2)[0])

	numbers := make([]model.LotteryNumber, 0, len(mains)+1)
	for i, n := range mains {
		numbers = append(numbers, model.LotteryNumber{Number: n, Kind: model.NumberKindMain, Position: i + 1})
	}
	if special > 0 {
		numbers = append(numbers, model.LotteryNumber{Number: special, Kind: model.NumberKindSpecial, Position: 1})
	}

	repo := repository.NewDrawRepository(db)
	_, err := repo.ReplaceDraw(context.Background(), &model.LotteryDraw{
		GameType:    game,
		DrawNumber:  drawNumber,
		DrawDate:    date,
		SalesAmount: salesAmount,
		TotalPrize:  totalPrize,
		Year:        year,
	}, numbers)
	require.NoError(t, err)
}

func int64p(v int64) *int64 { return &v }
