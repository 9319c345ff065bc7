package repository

import (
	"context"
	"fmt"

	"LottoStats/internal/model"

	"gorm.io/gorm"
)

// NumberCount 号码出现次数（频率类查询的基本返回单元）
type NumberCount struct {
	Number int   `json:"number"`
	Count  int64 `json:"count"`
}

// YearStat 单个年份的期数与销售/奖金聚合。无销售数据的年份聚合列为 null
type YearStat struct {
	Year       int      `json:"year"`
	DrawCount  int64    `json:"draw_count"`
	TotalSales *int64   `json:"total_sales"`
	TotalPrize *int64   `json:"total_prize"`
	AvgSales   *float64 `json:"avg_sales"`
	AvgPrize   *float64 `json:"avg_prize"`
	MaxPrize   *int64   `json:"max_prize"`
	MinPrize   *int64   `json:"min_prize"`
}

// StatsFilter 频率类查询的公共过滤条件。年份为 0 表示不限
type StatsFilter struct {
	YearStart int
	YearEnd   int
}

// StatsRepository 统计查询仓储。只读，所有聚合 SQL 收口在这里
type StatsRepository interface {
	// NumberFrequency 号码出现频率，次数降序、同次数按号码升序；limit<=0 表示不截断
	NumberFrequency(ctx context.Context, game model.GameType, kind model.NumberKind, filter StatsFilter, limit int) ([]NumberCount, error)
	// LatestDraws 最近 limit 期（日期降序、期别降序），号码已预加载
	LatestDraws(ctx context.Context, game model.GameType, limit int) ([]model.LotteryDraw, error)
	// CombinationFrequency 指定号码组合全部出现在主号中的期数（子集匹配，非全等匹配）
	CombinationFrequency(ctx context.Context, game model.GameType, numbers []int, filter StatsFilter) (int64, error)
	// StatisticsByYear 按年份聚合的期数与销售/奖金统计，年份升序
	StatisticsByYear(ctx context.Context, game model.GameType) ([]YearStat, error)
	// RecentMainNumberCounts 最近 window 期内主号码的出现频率（冷热号的原始排名）
	RecentMainNumberCounts(ctx context.Context, game model.GameType, window int) ([]NumberCount, error)
	// DrawsWithMainNumbers 该玩法全部期次，主号码已预加载（对奖比对用）
	DrawsWithMainNumbers(ctx context.Context, game model.GameType) ([]model.LotteryDraw, error)
	// DrawCount 该玩法期数总数（机率分母）
	DrawCount(ctx context.Context, game model.GameType) (int64, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建 StatsRepository 实例
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) NumberFrequency(ctx context.Context, game model.GameType, kind model.NumberKind, filter StatsFilter, limit int) ([]NumberCount, error) {
	db := r.db.WithContext(ctx).
		Table("lottery_numbers AS n").
		Select("n.number AS number, COUNT(*) AS count").
		Joins("JOIN lottery_draws AS d ON n.draw_id = d.id").
		Where("d.game_type = ? AND n.number_type = ?", game, kind)

	if filter.YearStart > 0 {
		db = db.Where("d.year >= ?", filter.YearStart)
	}
	if filter.YearEnd > 0 {
		db = db.Where("d.year <= ?", filter.YearEnd)
	}

	db = db.Group("n.number").Order("count DESC, n.number ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}

	var counts []NumberCount
	if err := db.Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("查询号码频率失败: %w", err)
	}
	return counts, nil
}

func (r *statsRepository) LatestDraws(ctx context.Context, game model.GameType, limit int) ([]model.LotteryDraw, error) {
	var draws []model.LotteryDraw
	err := r.db.WithContext(ctx).
		Preload("Numbers").
		Where("game_type = ?", game).
		Order("draw_date DESC, draw_number DESC").
		Limit(limit).
		Find(&draws).Error
	if err != nil {
		return nil, fmt.Errorf("查询最近开奖记录失败: %w", err)
	}
	return draws, nil
}

func (r *statsRepository) CombinationFrequency(ctx context.Context, game model.GameType, numbers []int, filter StatsFilter) (int64, error) {
	// 子集语义：组合中每个号码都出现在该期主号里即命中（HAVING 计数对齐组合长度），
	// 不要求该期主号与组合完全相同
	db := r.db.WithContext(ctx).Model(&model.LotteryDraw{}).
		Where("game_type = ?", game).
		Where("id IN (SELECT draw_id FROM lottery_numbers WHERE number IN ? AND number_type = ? GROUP BY draw_id HAVING COUNT(DISTINCT number) = ?)",
			numbers, model.NumberKindMain, len(numbers))

	if filter.YearStart > 0 {
		db = db.Where("year >= ?", filter.YearStart)
	}
	if filter.YearEnd > 0 {
		db = db.Where("year <= ?", filter.YearEnd)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("查询号码组合频率失败: %w", err)
	}
	return count, nil
}

func (r *statsRepository) StatisticsByYear(ctx context.Context, game model.GameType) ([]YearStat, error) {
	var stats []YearStat
	err := r.db.WithContext(ctx).Model(&model.LotteryDraw{}).
		Select("year, COUNT(*) AS draw_count, "+
			"SUM(sales_amount) AS total_sales, SUM(total_prize) AS total_prize, "+
			"AVG(sales_amount) AS avg_sales, AVG(total_prize) AS avg_prize, "+
			"MAX(total_prize) AS max_prize, MIN(total_prize) AS min_prize").
		Where("game_type = ?", game).
		Group("year").
		Order("year").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("查询年度统计失败: %w", err)
	}
	return stats, nil
}

func (r *statsRepository) RecentMainNumberCounts(ctx context.Context, game model.GameType, window int) ([]NumberCount, error) {
	// 窗口大于历史总期数时 LIMIT 自然收敛为全量，无需特判
	var counts []NumberCount
	err := r.db.WithContext(ctx).
		Table("lottery_numbers AS n").
		Select("n.number AS number, COUNT(*) AS count").
		Where("n.draw_id IN (SELECT id FROM lottery_draws WHERE game_type = ? ORDER BY draw_date DESC, draw_number DESC LIMIT ?)", game, window).
		Where("n.number_type = ?", model.NumberKindMain).
		Group("n.number").
		Order("count DESC, n.number ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("查询近期号码频率失败: %w", err)
	}
	return counts, nil
}

func (r *statsRepository) DrawsWithMainNumbers(ctx context.Context, game model.GameType) ([]model.LotteryDraw, error) {
	var draws []model.LotteryDraw
	err := r.db.WithContext(ctx).
		Preload("Numbers", "number_type = ?", model.NumberKindMain).
		Where("game_type = ?", game).
		Find(&draws).Error
	if err != nil {
		return nil, fmt.Errorf("查询历史主号码失败: %w", err)
	}
	return draws, nil
}

func (r *statsRepository) DrawCount(ctx context.Context, game model.GameType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.LotteryDraw{}).
		Where("game_type = ?", game).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("查询期数总数失败: %w", err)
	}
	return count, nil
}
