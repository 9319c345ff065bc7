package model

import "fmt"

// GameType 彩票玩法枚举（封闭集合，新增玩法需同时补 GameConfigs）
type GameType string

const (
	GameLotto649   GameType = "大樂透"
	GameSuperLotto GameType = "威力彩"
	GameDailyCash  GameType = "今彩539"
)

// NumberKind 号码类型：main=主号码 special=特别号
type NumberKind string

const (
	NumberKindMain    NumberKind = "main"
	NumberKindSpecial NumberKind = "special"
)

// GameConfig 单个玩法的开奖结构描述（主号个数、是否有特别号及其 CSV 列名）
type GameConfig struct {
	Game          GameType // 玩法名称（同时是 CSV 文件名前缀）
	MainNumbers   int      // 每期主号码个数
	HasSpecial    bool     // 是否开出特别号
	SpecialColumn string   // 特别号在 CSV 中的列名（威力彩叫"第二區"，大乐透叫"特別號"）
	MaxNumber     int      // 号码取值上限（选号策略的补号范围用）
}

// GameConfigs 全部支持的玩法。顺序即扫描/报表展示顺序
var GameConfigs = []GameConfig{
	{Game: GameLotto649, MainNumbers: 6, HasSpecial: true, SpecialColumn: "特別號", MaxNumber: 49},
	{Game: GameSuperLotto, MainNumbers: 6, HasSpecial: true, SpecialColumn: "第二區", MaxNumber: 38},
	{Game: GameDailyCash, MainNumbers: 5, HasSpecial: false, SpecialColumn: "", MaxNumber: 39},
}

// ConfigFor 按玩法名称取配置，未知玩法返回错误
func ConfigFor(game GameType) (GameConfig, error) {
	for _, cfg := range GameConfigs {
		if cfg.Game == game {
			return cfg, nil
		}
	}
	return GameConfig{}, fmt.Errorf("未支持的彩票玩法: %s", game)
}
