package service

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"LottoStats/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPickFixture 造出 40+ 个不同号码、频率有差异的大乐透历史数据
func newPickFixture(t *testing.T) *PickService {
	t.Helper()
	db := newTestDB(t)
	svc := NewPickService(db, newTestLogger())

	// 8 期大乐透：1..8 每期都含小号 1..3 里的某些，覆盖 40+ 个不同号码
	draws := [][]int{
		{1, 2, 3, 4, 5, 6},
		{1, 2, 3, 7, 8, 9},
		{1, 2, 10, 11, 12, 13},
		{1, 14, 15, 16, 17, 18},
		{19, 20, 21, 22, 23, 24},
		{25, 26, 27, 28, 29, 30},
		{31, 32, 33, 34, 35, 36},
		{37, 38, 39, 40, 41, 42},
	}
	for i, mains := range draws {
		seedDraw(t, db, model.GameLotto649, fmt.Sprintf("%03d", i+1),
			fmt.Sprintf("2024-01-%02d", i+1), mains, 0, nil, nil)
	}
	return svc
}

func TestSmartPick(t *testing.T) {
	svc := newPickFixture(t)

	result, err := svc.SmartPick(context.Background(), model.GameLotto649)
	require.NoError(t, err)

	assert.Equal(t, model.GameLotto649, result.Game)
	assert.Equal(t, StrategySmart, result.Strategy)
	require.Len(t, result.Numbers, 6)
	assert.True(t, sort.IntsAreSorted(result.Numbers), "选号结果必须升序")

	seen := make(map[int]bool)
	for _, n := range result.Numbers {
		assert.False(t, seen[n], "号码不得重复")
		seen[n] = true
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 49)
	}

	// 智慧选号只从 Top 30 里取
	require.Len(t, result.Details, 6)
	for _, d := range result.Details {
		assert.Equal(t, "smart", d.Source)
		assert.LessOrEqual(t, d.Rank, 30)
		assert.Positive(t, d.Count)
	}

	// 真实中奖机率声明不变：C(49,6)=13,983,816
	assert.Contains(t, result.Note, "13,983,816")
}

func TestSmartPick_InsufficientHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewPickService(db, newTestLogger())

	_, err := svc.SmartPick(context.Background(), model.GameLotto649)
	require.Error(t, err)
}

func TestMixedPick(t *testing.T) {
	svc := newPickFixture(t)

	result, err := svc.MixedPick(context.Background(), model.GameLotto649)
	require.NoError(t, err)

	assert.Equal(t, StrategyMixed, result.Strategy)
	require.Len(t, result.Numbers, 6)
	assert.True(t, sort.IntsAreSorted(result.Numbers))

	bySource := make(map[string]int)
	seen := make(map[int]bool)
	for _, d := range result.Details {
		bySource[d.Source]++
		assert.False(t, seen[d.Number])
		seen[d.Number] = true
		assert.GreaterOrEqual(t, d.Number, 1)
		assert.LessOrEqual(t, d.Number, 49)
	}
	// 热3 + 冷2 + 惊喜1
	assert.Equal(t, 3, bySource["hot"])
	assert.Equal(t, 2, bySource["cold"])
	assert.Equal(t, 1, bySource["surprise"])

	for _, d := range result.Details {
		if d.Source == "hot" {
			assert.LessOrEqual(t, d.Rank, 15, "热号必须来自排名前 15")
		}
	}
	assert.Contains(t, result.Note, "13,983,816")
}

func TestMixedPick_UnknownGame(t *testing.T) {
	db := newTestDB(t)
	svc := NewPickService(db, newTestLogger())

	_, err := svc.MixedPick(context.Background(), model.GameType("刮刮樂"))
	require.Error(t, err)
}

func TestCombinations(t *testing.T) {
	assert.Equal(t, int64(13983816), combinations(49, 6))
	assert.Equal(t, int64(575757), combinations(39, 5))
	assert.Equal(t, int64(2760681), combinations(38, 6))
}

func TestFormatOdds(t *testing.T) {
	assert.Equal(t, "13,983,816", formatOdds(13983816))
	assert.Equal(t, "575,757", formatOdds(575757))
	assert.Equal(t, "123", formatOdds(123))
}
