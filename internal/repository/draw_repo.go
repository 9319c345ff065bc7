package repository

import (
	"context"
	"errors"
	"fmt"

	"LottoStats/internal/model"

	"gorm.io/gorm"
)

// GameTotal 单个玩法的入库概况（导入完成后的校验输出）
type GameTotal struct {
	GameType  model.GameType `json:"game_type"`
	DrawCount int64          `json:"draw_count"`
	MinYear   int            `json:"min_year"`
	MaxYear   int            `json:"max_year"`
}

// DrawRepository 期次写入仓储。一行 CSV 对应一次 ReplaceDraw，自然键冲突即覆盖
type DrawRepository interface {
	// ReplaceDraw 按自然键 (game_type, draw_number) 落库：已存在则更新标量字段并整组重建号码，
	// 不存在则新建。整个操作在同一事务内，失败不留半行数据。
	// 返回本次实际写入的号码条数。
	ReplaceDraw(ctx context.Context, draw *model.LotteryDraw, numbers []model.LotteryNumber) (int, error)
	// GameTotals 各玩法的期数与年份范围（数据完整性校验用）
	GameTotals(ctx context.Context) ([]GameTotal, error)
}

type drawRepository struct {
	db *gorm.DB
}

// NewDrawRepository 创建 DrawRepository 实例
func NewDrawRepository(db *gorm.DB) DrawRepository {
	return &drawRepository{db: db}
}

// ReplaceDraw 单期事务写入：查自然键 → 更新或新建 → 删旧号码 → 插新号码
func (r *drawRepository) ReplaceDraw(ctx context.Context, draw *model.LotteryDraw, numbers []model.LotteryNumber) (int, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	var existing model.LotteryDraw
	err := tx.Where("game_type = ? AND draw_number = ?", draw.GameType, draw.DrawNumber).
		First(&existing).Error
	switch {
	case err == nil:
		// 已存在：覆盖标量字段，号码整组删除后重建（避免旧列残留）
		draw.ID = existing.ID
		draw.CreatedAt = existing.CreatedAt
		if err := tx.Model(&model.LotteryDraw{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"draw_date":    draw.DrawDate,
				"sales_amount": draw.SalesAmount,
				"sales_bets":   draw.SalesBets,
				"total_prize":  draw.TotalPrize,
				"year":         draw.Year,
			}).Error; err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("更新期次失败: %w, 期别: %s", err, draw.DrawNumber)
		}
		if err := tx.Where("draw_id = ?", existing.ID).
			Delete(&model.LotteryNumber{}).Error; err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("清理旧号码失败: %w, 期别: %s", err, draw.DrawNumber)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Create(draw).Error; err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("保存期次失败: %w, 期别: %s", err, draw.DrawNumber)
		}
	default:
		tx.Rollback()
		return 0, fmt.Errorf("查询期次失败: %w, 期别: %s", err, draw.DrawNumber)
	}

	for i := range numbers {
		numbers[i].ID = 0
		numbers[i].DrawID = draw.ID
		if err := tx.Create(&numbers[i]).Error; err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("保存号码失败: %w, 期别: %s", err, draw.DrawNumber)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("提交事务失败: %w, 期别: %s", err, draw.DrawNumber)
	}
	return len(numbers), nil
}

// GameTotals 按玩法聚合期数和年份范围
func (r *drawRepository) GameTotals(ctx context.Context) ([]GameTotal, error) {
	var totals []GameTotal
	err := r.db.WithContext(ctx).Model(&model.LotteryDraw{}).
		Select("game_type, COUNT(*) AS draw_count, MIN(year) AS min_year, MAX(year) AS max_year").
		Group("game_type").
		Order("game_type").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("统计各玩法入库概况失败: %w", err)
	}
	return totals, nil
}
