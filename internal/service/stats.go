package service

import (
	"context"
	"math"
	"sort"

	"LottoStats/internal/model"
	"LottoStats/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StatsService 统计分析服务。展示层只允许消费这里的返回值，不得绕过直查库
type StatsService struct {
	statsRepo repository.StatsRepository
	logger    *logrus.Logger
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(db *gorm.DB, logger *logrus.Logger) *StatsService {
	return &StatsService{
		statsRepo: repository.NewStatsRepository(db),
		logger:    logger,
	}
}

// DrawSummary 单期开奖摘要（号码已排序，供展示层直接使用）
type DrawSummary struct {
	DrawNumber     string `json:"draw_number"`
	DrawDate       string `json:"draw_date"`
	MainNumbers    []int  `json:"main_numbers"`
	SpecialNumbers []int  `json:"special_numbers"`
	SalesAmount    *int64 `json:"sales_amount"`
	SalesBets      *int64 `json:"sales_bets"`
	TotalPrize     *int64 `json:"total_prize"`
}

// ColdHotResult 冷热号结果。排名不足 10 个号码时冷热两侧会重叠
type ColdHotResult struct {
	Hot  []repository.NumberCount `json:"hot_numbers"`
	Cold []repository.NumberCount `json:"cold_numbers"`
}

// NumberStat 单个号码的完整统计（机率为出现期数占总期数的百分比，保留两位小数）
type NumberStat struct {
	Number      int     `json:"number"`
	Count       int64   `json:"count"`
	Probability float64 `json:"probability"`
	Rank        int     `json:"rank"`
}

// MatchRecord 候选号码与某一期主号的比对结果
type MatchRecord struct {
	DrawNumber   string `json:"draw_number"`
	DrawDate     string `json:"draw_date"`
	MatchCount   int    `json:"match_count"`
	MatchNumbers []int  `json:"match_numbers"`
}

// MatchHistoryResult 对奖汇总。PerDraw 只列出命中 2 个及以上的期次，
// Summary 的分桶与最大命中数覆盖全部期次（含未列出的）
type MatchHistoryResult struct {
	PerDraw    []MatchRecord `json:"per_draw"`
	Summary    map[int]int   `json:"summary"` // 命中数 → 期数，桶为 2..主号个数
	MaxMatch   int           `json:"max_match"`
	TotalDraws int           `json:"total_draws"`
}

// NumberFrequency 号码出现频率排行
func (s *StatsService) NumberFrequency(ctx context.Context, game model.GameType, kind model.NumberKind, filter repository.StatsFilter, limit int) ([]repository.NumberCount, error) {
	return s.statsRepo.NumberFrequency(ctx, game, kind, filter, limit)
}

// LatestDraws 最近 limit 期开奖摘要
func (s *StatsService) LatestDraws(ctx context.Context, game model.GameType, limit int) ([]DrawSummary, error) {
	draws, err := s.statsRepo.LatestDraws(ctx, game, limit)
	if err != nil {
		return nil, err
	}
	summaries := make([]DrawSummary, 0, len(draws))
	for _, d := range draws {
		summary := DrawSummary{
			DrawNumber:     d.DrawNumber,
			DrawDate:       d.DrawDate,
			MainNumbers:    []int{},
			SpecialNumbers: []int{},
			SalesAmount:    d.SalesAmount,
			SalesBets:      d.SalesBets,
			TotalPrize:     d.TotalPrize,
		}
		for _, n := range d.Numbers {
			if n.Kind == model.NumberKindSpecial {
				summary.SpecialNumbers = append(summary.SpecialNumbers, n.Number)
			} else {
				summary.MainNumbers = append(summary.MainNumbers, n.Number)
			}
		}
		sort.Ints(summary.MainNumbers)
		sort.Ints(summary.SpecialNumbers)
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// CombinationFrequency 号码组合同时开出的期数（子集匹配）
func (s *StatsService) CombinationFrequency(ctx context.Context, game model.GameType, numbers []int, filter repository.StatsFilter) (int64, error) {
	return s.statsRepo.CombinationFrequency(ctx, game, numbers, filter)
}

// StatisticsByYear 年度统计
func (s *StatsService) StatisticsByYear(ctx context.Context, game model.GameType) ([]repository.YearStat, error) {
	return s.statsRepo.StatisticsByYear(ctx, game)
}

// ColdHotNumbers 最近 window 期的冷热号。窗口大于历史期数时自动收敛为全量
func (s *StatsService) ColdHotNumbers(ctx context.Context, game model.GameType, window int) (*ColdHotResult, error) {
	ranked, err := s.statsRepo.RecentMainNumberCounts(ctx, game, window)
	if err != nil {
		return nil, err
	}
	result := &ColdHotResult{Hot: ranked, Cold: ranked}
	if len(ranked) > 10 {
		result.Hot = ranked[:10]
		result.Cold = ranked[len(ranked)-10:]
	}
	return result, nil
}

// NumberStats 全部主号码的排名、次数与出现机率（机率分母为该玩法总期数）
func (s *StatsService) NumberStats(ctx context.Context, game model.GameType) ([]NumberStat, error) {
	counts, err := s.statsRepo.NumberFrequency(ctx, game, model.NumberKindMain, repository.StatsFilter{}, 0)
	if err != nil {
		return nil, err
	}
	total, err := s.statsRepo.DrawCount(ctx, game)
	if err != nil {
		return nil, err
	}

	stats := make([]NumberStat, 0, len(counts))
	for i, c := range counts {
		stat := NumberStat{Number: c.Number, Count: c.Count, Rank: i + 1}
		if total > 0 {
			stat.Probability = round2(float64(c.Count) * 100 / float64(total))
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// MatchHistory 候选号码对全部历史期次的比对。命中 2 个及以上的期次逐条列出，
// 按命中数降序、日期降序排序
func (s *StatsService) MatchHistory(ctx context.Context, game model.GameType, candidates []int) (*MatchHistoryResult, error) {
	gameCfg, err := model.ConfigFor(game)
	if err != nil {
		return nil, err
	}
	draws, err := s.statsRepo.DrawsWithMainNumbers(ctx, game)
	if err != nil {
		return nil, err
	}

	candidateSet := make(map[int]bool, len(candidates))
	for _, n := range candidates {
		candidateSet[n] = true
	}

	result := &MatchHistoryResult{
		PerDraw:    []MatchRecord{},
		Summary:    make(map[int]int, gameCfg.MainNumbers),
		TotalDraws: len(draws),
	}
	for size := 2; size <= gameCfg.MainNumbers; size++ {
		result.Summary[size] = 0
	}

	for _, d := range draws {
		var matched []int
		for _, n := range d.Numbers {
			if candidateSet[n.Number] {
				matched = append(matched, n.Number)
			}
		}
		if len(matched) > result.MaxMatch {
			result.MaxMatch = len(matched)
		}
		if len(matched) < 2 {
			continue
		}
		result.Summary[len(matched)]++
		sort.Ints(matched)
		result.PerDraw = append(result.PerDraw, MatchRecord{
			DrawNumber:   d.DrawNumber,
			DrawDate:     d.DrawDate,
			MatchCount:   len(matched),
			MatchNumbers: matched,
		})
	}

	sort.Slice(result.PerDraw, func(i, j int) bool {
		if result.PerDraw[i].MatchCount != result.PerDraw[j].MatchCount {
			return result.PerDraw[i].MatchCount > result.PerDraw[j].MatchCount
		}
		return result.PerDraw[i].DrawDate > result.PerDraw[j].DrawDate
	})
	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
