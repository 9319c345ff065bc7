package model

import (
	"time"

	"gorm.io/datatypes"
)

// LotteryDraw 一期开奖记录。自然键为 (game_type, draw_number)，重复导入按自然键覆盖
type LotteryDraw struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	GameType    GameType  `gorm:"column:game_type;type:varchar(32);index:idx_draws_game_type;uniqueIndex:uk_game_draw;not null;comment:彩票玩法"`
	DrawNumber  string    `gorm:"column:draw_number;type:varchar(32);index:idx_draws_number;uniqueIndex:uk_game_draw;not null;comment:期别（玩法内唯一）"`
	DrawDate    string    `gorm:"column:draw_date;type:varchar(16);index:idx_draws_date;not null;comment:开奖日期（ISO格式，无法解析时保留原文）"`
	SalesAmount *int64    `gorm:"column:sales_amount;type:bigint;comment:销售总额（可空）"`
	SalesBets   *int64    `gorm:"column:sales_bets;type:bigint;comment:销售注数（可空）"`
	TotalPrize  *int64    `gorm:"column:total_prize;type:bigint;comment:总奖金（可空）"`
	Year        int       `gorm:"column:year;index:idx_draws_year;comment:开奖年份（由日期推导）"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`

	Numbers []LotteryNumber `gorm:"foreignKey:DrawID;constraint:OnDelete:CASCADE"`
}

// LotteryNumber 一期内的单个号码。随所属期次整组删除重建，不做逐号更新
type LotteryNumber struct {
	ID       uint64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	DrawID   uint64     `gorm:"column:draw_id;index:idx_numbers_draw_id;not null;comment:关联期次ID"`
	Number   int        `gorm:"column:number;index:idx_numbers_value;not null;comment:号码值"`
	Kind     NumberKind `gorm:"column:number_type;type:varchar(8);index:idx_numbers_type;not null;comment:号码类型：main/special"`
	Position int        `gorm:"column:position;comment:列序（主号按CSV列序，特别号固定为1）"`
}

// ImportRun 一次完整导入的汇总记录（审计用，错误明细存 JSON）
type ImportRun struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	RunUUID        string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null;comment:本次导入全局唯一ID"`
	TotalFiles     int            `gorm:"column:total_files;comment:扫描到的文件数"`
	ProcessedFiles int            `gorm:"column:processed_files;comment:成功处理文件数"`
	SkippedFiles   int            `gorm:"column:skipped_files;comment:跳过文件数"`
	TotalDraws     int            `gorm:"column:total_draws;comment:导入期数"`
	TotalNumbers   int            `gorm:"column:total_numbers;comment:导入号码数"`
	Errors         datatypes.JSON `gorm:"column:errors;comment:行级错误明细（JSON数组）"`
	StartedAt      time.Time      `gorm:"column:started_at;comment:开始时间"`
	FinishedAt     time.Time      `gorm:"column:finished_at;comment:结束时间"`
}

func (LotteryDraw) TableName() string   { return "lottery_draws" }
func (LotteryNumber) TableName() string { return "lottery_numbers" }
func (ImportRun) TableName() string     { return "import_runs" }
