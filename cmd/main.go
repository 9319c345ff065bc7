package main

import (
	"fmt"
	"log"

	"LottoStats/internal/api"
	"LottoStats/internal/config"
	"LottoStats/internal/model"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// 1. 加载配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 2. 初始化日志
	logrusLogger := logrus.New()
	logrusLogger.SetLevel(logrus.InfoLevel)
	logrusLogger.Info("配置文件加载成功")

	// 3. 初始化GORM日志器（Info级别显示SQL日志）
	gormLogger := logger.Default.LogMode(logger.Info)

	// 4. 初始化 SQLite 连接（文件不存在会自动创建）
	db, err := gorm.Open(sqlite.Open(cfg.SQLite.Path), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		logrusLogger.Fatalf("连接SQLite失败: %v", err)
	}
	logrusLogger.Infof("SQLite连接成功：%s", cfg.SQLite.Path)

	// 5. 配置连接池（SQLite 单写者，保持单连接即可）
	sqlDB, err := db.DB()
	if err != nil {
		logrusLogger.Fatalf("获取SQL DB失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(cfg.SQLite.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.SQLite.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.SQLite.ConnMaxLifetime)

	// 6. 库表不存在则自动创建（按依赖顺序迁移）
	if err := db.AutoMigrate(
		&model.LotteryDraw{},
		&model.LotteryNumber{},
		&model.ImportRun{},
	); err != nil {
		logrusLogger.Fatalf("数据库表结构迁移失败: %v", err)
	}
	logrusLogger.Info("数据库表结构检查完成（不存在则已创建）")

	// 7. 配置Gin运行模式（从配置读取：debug/release）
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	// 注册pprof 方便调试和监测性能问题
	pprof.Register(r)
	logrusLogger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	// 8. 注册API路由
	importHandler := api.NewImportHandler(db, logrusLogger, cfg)
	r.POST("/api/import", importHandler.RunImport)
	r.GET("/api/import/latest", importHandler.LatestRun)

	// 统计查询接口（展示层消费统计数据的唯一入口）
	statsHandler := api.NewStatsHandler(db, logrusLogger)
	r.GET("/api/draws/latest", statsHandler.LatestDraws)
	r.GET("/api/stats/frequency", statsHandler.Frequency)
	r.GET("/api/stats/numbers", statsHandler.NumberStats)
	r.GET("/api/stats/combination", statsHandler.Combination)
	r.GET("/api/stats/yearly", statsHandler.Yearly)
	r.GET("/api/stats/coldhot", statsHandler.ColdHot)
	r.GET("/api/stats/match", statsHandler.Match)

	// 选号接口
	pickHandler := api.NewPickHandler(db, logrusLogger)
	r.GET("/api/picks/smart", pickHandler.SmartPick)
	r.GET("/api/picks/mixed", pickHandler.MixedPick)

	// 9. 启动服务（从配置读取端口）
	port := cfg.Server.Port
	logrusLogger.Infof("服务启动成功，端口：%d", port)
	if err := r.Run(fmt.Sprintf(":%d", port)); err != nil {
		logrusLogger.Fatalf("启动服务失败: %v", err)
	}
}
