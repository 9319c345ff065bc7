package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"LottoStats/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// 智慧选号的候选池：历史出现次数排前 30 的号码
	smartPoolSize = 30
	// 混合策略的热号/冷号池大小（排名头尾各 15）
	mixedPoolSize = 15
)

// PickStrategy 选号策略名
type PickStrategy string

const (
	StrategySmart PickStrategy = "smart"
	StrategyMixed PickStrategy = "mixed"
)

// PickDetail 选出的单个号码及其历史统计
type PickDetail struct {
	Number      int     `json:"number"`
	Source      string  `json:"source"` // smart/hot/cold/surprise
	Count       int64   `json:"count"`
	Probability float64 `json:"probability"`
	Rank        int     `json:"rank"`
}

// PickResult 一次选号结果。Note 固定声明选号不改变真实中奖机率
type PickResult struct {
	Game           model.GameType `json:"game"`
	Strategy       PickStrategy   `json:"strategy"`
	Numbers        []int          `json:"numbers"`
	Details        []PickDetail   `json:"details"`
	AvgProbability float64        `json:"avg_probability"`
	Note           string         `json:"note"`
}

// PickService 选号服务。所有策略都只是对频率排行的均匀随机抽样，
// 不含任何预测成分，也不改变真实开奖机率
type PickService struct {
	stats  *StatsService
	logger *logrus.Logger
	rng    *rand.Rand
}

// NewPickService 创建 PickService 实例
func NewPickService(db *gorm.DB, logger *logrus.Logger) *PickService {
	return &PickService{
		stats:  NewStatsService(db, logger),
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SmartPick 智慧选号：从 Top 30 热门号码中均匀随机抽满一组主号
func (s *PickService) SmartPick(ctx context.Context, game model.GameType) (*PickResult, error) {
	gameCfg, err := model.ConfigFor(game)
	if err != nil {
		return nil, err
	}
	stats, err := s.stats.NumberStats(ctx, game)
	if err != nil {
		return nil, err
	}

	pool := topNumbers(stats, smartPoolSize)
	if len(pool) < gameCfg.MainNumbers {
		return nil, fmt.Errorf("%s历史数据不足，无法选号（候选号码仅 %d 个）", game, len(pool))
	}

	selected := s.sample(pool, gameCfg.MainNumbers, nil)
	return s.buildResult(gameCfg, StrategySmart, stats, selected, func(int) string { return "smart" }), nil
}

// MixedPick 混合策略选号：热号+冷号+惊喜号。热号取排名前15，冷号取排名后15，
// 惊喜号从剩余全部号码中随机补一个
func (s *PickService) MixedPick(ctx context.Context, game model.GameType) (*PickResult, error) {
	gameCfg, err := model.ConfigFor(game)
	if err != nil {
		return nil, err
	}
	stats, err := s.stats.NumberStats(ctx, game)
	if err != nil {
		return nil, err
	}
	if len(stats) < gameCfg.MainNumbers {
		return nil, fmt.Errorf("%s历史数据不足，无法选号（仅 %d 个号码出现过）", game, len(stats))
	}

	hotPool := topNumbers(stats, mixedPoolSize)
	coldPool := tailNumbers(stats, mixedPoolSize)

	// 主号个数固定为 惊喜1 + 冷2 + 热(N-3)
	hotCount := gameCfg.MainNumbers - 3
	picked := make(map[int]bool)
	source := make(map[int]string)

	for _, n := range s.sample(hotPool, hotCount, picked) {
		picked[n] = true
		source[n] = "hot"
	}
	for _, n := range s.sample(coldPool, 2, picked) {
		picked[n] = true
		source[n] = "cold"
	}
	// 惊喜号从 1..MaxNumber 全范围补齐（包括从未开出过的号码）
	fullRange := make([]int, 0, gameCfg.MaxNumber)
	for n := 1; n <= gameCfg.MaxNumber; n++ {
		fullRange = append(fullRange, n)
	}
	for _, n := range s.sample(fullRange, gameCfg.MainNumbers-len(picked), picked) {
		picked[n] = true
		source[n] = "surprise"
	}

	selected := make([]int, 0, len(picked))
	for n := range picked {
		selected = append(selected, n)
	}
	return s.buildResult(gameCfg, StrategyMixed, stats, selected, func(n int) string { return source[n] }), nil
}

// sample 从 pool 中均匀随机取 k 个未被排除的号码
func (s *PickService) sample(pool []int, k int, exclude map[int]bool) []int {
	candidates := make([]int, 0, len(pool))
	for _, n := range pool {
		if !exclude[n] {
			candidates = append(candidates, n)
		}
	}
	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]int, 0, k)
	for _, i := range s.rng.Perm(len(candidates))[:k] {
		out = append(out, candidates[i])
	}
	return out
}

func (s *PickService) buildResult(gameCfg model.GameConfig, strategy PickStrategy, stats []NumberStat, selected []int, sourceOf func(int) string) *PickResult {
	statByNumber := make(map[int]NumberStat, len(stats))
	for _, st := range stats {
		statByNumber[st.Number] = st
	}

	sort.Ints(selected)
	result := &PickResult{
		Game:     gameCfg.Game,
		Strategy: strategy,
		Numbers:  selected,
		Note: fmt.Sprintf("此选号方式不会改变中奖机率（1/%s）",
			formatOdds(combinations(gameCfg.MaxNumber, gameCfg.MainNumbers))),
	}

	var probSum float64
	for _, n := range selected {
		st := statByNumber[n] // 惊喜号可能从未开出过，对应零值统计
		result.Details = append(result.Details, PickDetail{
			Number:      n,
			Source:      sourceOf(n),
			Count:       st.Count,
			Probability: st.Probability,
			Rank:        st.Rank,
		})
		probSum += st.Probability
	}
	if len(selected) > 0 {
		result.AvgProbability = round2(probSum / float64(len(selected)))
	}
	return result
}

// topNumbers 排行前 n 个号码
func topNumbers(stats []NumberStat, n int) []int {
	if n > len(stats) {
		n = len(stats)
	}
	out := make([]int, 0, n)
	for _, st := range stats[:n] {
		out = append(out, st.Number)
	}
	return out
}

// tailNumbers 排行末 n 个号码
func tailNumbers(stats []NumberStat, n int) []int {
	if n > len(stats) {
		n = len(stats)
	}
	out := make([]int, 0, n)
	for _, st := range stats[len(stats)-n:] {
		out = append(out, st.Number)
	}
	return out
}

// combinations C(n,k)，真实中奖机率的分母（如大乐透 C(49,6)=13,983,816）
func combinations(n, k int) int64 {
	if k > n {
		return 0
	}
	result := int64(1)
	for i := 1; i <= k; i++ {
		result = result * int64(n-k+i) / int64(i)
	}
	return result
}

// formatOdds 千分位格式化
func formatOdds(v int64) string {
	s := fmt.Sprintf("%d", v)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
