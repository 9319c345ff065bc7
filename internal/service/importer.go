package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"LottoStats/internal/config"
	"LottoStats/internal/model"
	"LottoStats/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// 各玩法 CSV 的公共列名（台彩官网导出格式，繁体表头）
const (
	colDrawNumber  = "期別"
	colDrawDate    = "開獎日期"
	colSalesAmount = "銷售總額"
	colSalesBets   = "銷售注數"
	colTotalPrize  = "總獎金"
)

// Source 扫描到的单个数据源文件
type Source struct {
	Game model.GameType `json:"game"`
	Path string         `json:"path"`
}

// ImportSummary 一次完整导入的汇总。Errors 全量保留，ErrorPreview 按配置截断展示
type ImportSummary struct {
	RunID          string                 `json:"run_id"`
	TotalFiles     int                    `json:"total_files"`
	ProcessedFiles int                    `json:"processed_files"`
	SkippedFiles   int                    `json:"skipped_files"`
	TotalDraws     int                    `json:"total_draws"`
	TotalNumbers   int                    `json:"total_numbers"`
	Errors         []string               `json:"-"`
	ErrorPreview   []string               `json:"error_preview"`
	MoreErrors     int                    `json:"more_errors"` // 超出预览上限的错误条数（"+N more"）
	GameTotals     []repository.GameTotal `json:"game_totals"`
}

// ImportService 彩票数据导入服务：扫描目录 → 按玩法解析 CSV → 按自然键覆盖入库
type ImportService struct {
	drawRepo repository.DrawRepository
	runRepo  repository.RunRepository
	logger   *logrus.Logger
	cfg      *config.Config
}

// NewImportService 创建 ImportService 实例
func NewImportService(db *gorm.DB, logger *logrus.Logger, cfg *config.Config) *ImportService {
	return &ImportService{
		drawRepo: repository.NewDrawRepository(db),
		runRepo:  repository.NewRunRepository(db),
		logger:   logger,
		cfg:      cfg,
	}
}

// ScanSources 扫描数据根目录下按年份分的子目录，按文件名前缀识别玩法。
// 前缀必须是"玩法名_"的精确匹配，避免"大樂透加開獎項"之类的衍生文件被误判为大乐透。
// 返回顺序为目录、文件名的字典序，仅用于报表展示，不影响正确性。
func (s *ImportService) ScanSources(rootDir string) ([]Source, error) {
	if _, err := os.Stat(rootDir); err != nil {
		return nil, fmt.Errorf("找不到数据目录 %s: %w", rootDir, err)
	}

	yearDirs, err := os.ReadDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("读取数据目录失败: %w", err)
	}

	var sources []Source
	for _, yearDir := range yearDirs {
		if !yearDir.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(rootDir, yearDir.Name()))
		if err != nil {
			s.logger.WithError(err).Warnf("读取年份目录 %s 失败，跳过", yearDir.Name())
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".csv") {
				continue
			}
			for _, cfg := range model.GameConfigs {
				if strings.HasPrefix(f.Name(), string(cfg.Game)+"_") {
					sources = append(sources, Source{
						Game: cfg.Game,
						Path: filepath.Join(rootDir, yearDir.Name(), f.Name()),
					})
					break
				}
			}
		}
	}
	return sources, nil
}

// ImportFile 导入单个 CSV 文件。每行一个事务，单行失败只跳过该行。
// 返回成功入库的期数、号码数和行级错误列表；文件整体不可读时返回错误。
func (s *ImportService) ImportFile(ctx context.Context, game model.GameType, path string) (int, int, []string, error) {
	gameCfg, err := model.ConfigFor(game)
	if err != nil {
		return 0, 0, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("读取文件失败 (%s): %w", path, err)
	}
	// 台彩导出的 CSV 带 UTF-8 BOM
	text := strings.TrimPrefix(string(data), "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1 // 行宽不齐时按缺列处理，不在解析层报错
	records, err := reader.ReadAll()
	if err != nil {
		return 0, 0, nil, fmt.Errorf("解析CSV失败 (%s): %w", path, err)
	}
	if len(records) == 0 {
		return 0, 0, nil, fmt.Errorf("文件为空 (%s)", path)
	}

	// 表头 → 列序号映射，可选列按列是否存在判断
	colIndex := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		colIndex[strings.TrimSpace(name)] = i
	}

	var (
		importedDraws   int
		importedNumbers int
		rowErrors       []string
	)
	fileName := filepath.Base(path)

	for _, row := range records[1:] {
		drawNumber, draw, numbers, err := s.parseRow(gameCfg, colIndex, row)
		if err == nil {
			var n int
			n, err = s.drawRepo.ReplaceDraw(ctx, draw, numbers)
			importedNumbers += n
		}
		if err != nil {
			msg := fmt.Sprintf("处理记录时发生错误 (%s, 期别: %s): %v", fileName, orNA(drawNumber), err)
			rowErrors = append(rowErrors, msg)
			s.logger.Warn(msg)
			continue
		}
		importedDraws++
	}
	return importedDraws, importedNumbers, rowErrors, nil
}

// parseRow 把一行 CSV 解析为期次与号码。任何必填字段缺失或非法都让整行失败
func (s *ImportService) parseRow(gameCfg model.GameConfig, colIndex map[string]int, row []string) (string, *model.LotteryDraw, []model.LotteryNumber, error) {
	drawNumber, ok := cell(colIndex, row, colDrawNumber)
	if !ok || drawNumber == "" {
		return drawNumber, nil, nil, fmt.Errorf("缺少必填列 %s", colDrawNumber)
	}
	rawDate, ok := cell(colIndex, row, colDrawDate)
	if !ok || rawDate == "" {
		return drawNumber, nil, nil, fmt.Errorf("缺少必填列 %s", colDrawDate)
	}

	drawDate := normalizeDate(rawDate)
	year, err := strconv.Atoi(strings.SplitN(drawDate, "-", 2)[0])
	if err != nil {
		return drawNumber, nil, nil, fmt.Errorf("无法从日期 %q 推导年份: %w", drawDate, err)
	}

	draw := &model.LotteryDraw{
		GameType:   gameCfg.Game,
		DrawNumber: drawNumber,
		DrawDate:   drawDate,
		Year:       year,
	}
	if draw.SalesAmount, err = optionalInt(colIndex, row, colSalesAmount); err != nil {
		return drawNumber, nil, nil, err
	}
	if draw.SalesBets, err = optionalInt(colIndex, row, colSalesBets); err != nil {
		return drawNumber, nil, nil, err
	}
	if draw.TotalPrize, err = optionalInt(colIndex, row, colTotalPrize); err != nil {
		return drawNumber, nil, nil, err
	}

	var numbers []model.LotteryNumber
	for i := 1; i <= gameCfg.MainNumbers; i++ {
		col := fmt.Sprintf("獎號%d", i)
		v, ok := cell(colIndex, row, col)
		if !ok {
			return drawNumber, nil, nil, fmt.Errorf("缺少主号码列 %s", col)
		}
		if v == "" {
			continue // 空列跳过，保留已有列（部分列缺失的行按原样接受）
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return drawNumber, nil, nil, fmt.Errorf("主号码列 %s 的值 %q 非法: %w", col, v, err)
		}
		numbers = append(numbers, model.LotteryNumber{Number: n, Kind: model.NumberKindMain, Position: i})
	}

	if gameCfg.HasSpecial {
		if v, ok := cell(colIndex, row, gameCfg.SpecialColumn); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return drawNumber, nil, nil, fmt.Errorf("特别号列 %s 的值 %q 非法: %w", gameCfg.SpecialColumn, v, err)
			}
			numbers = append(numbers, model.LotteryNumber{Number: n, Kind: model.NumberKindSpecial, Position: 1})
		}
	}
	return drawNumber, draw, numbers, nil
}

// ImportAll 扫描并导入全部数据源，按玩法分组顺序处理，最后落库导入记录
func (s *ImportService) ImportAll(ctx context.Context, rootDir string) (*ImportSummary, error) {
	startedAt := time.Now()
	sources, err := s.ScanSources(rootDir)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{
		RunID:      uuid.NewString(),
		TotalFiles: len(sources),
	}
	if len(sources) == 0 {
		s.logger.Warnf("数据目录 %s 下没有找到任何 CSV 文件", rootDir)
	}

	// 按玩法分组，组内按文件名排序（与扫描顺序一致，便于对照进度日志）
	byGame := make(map[model.GameType][]string)
	for _, src := range sources {
		byGame[src.Game] = append(byGame[src.Game], src.Path)
	}

	for _, gameCfg := range model.GameConfigs {
		files := byGame[gameCfg.Game]
		if len(files) == 0 {
			continue
		}
		sort.Strings(files)
		s.logger.Infof("导入 %s 数据（共 %d 个文件）", gameCfg.Game, len(files))

		for i, path := range files {
			draws, numbers, rowErrs, err := s.ImportFile(ctx, gameCfg.Game, path)
			summary.Errors = append(summary.Errors, rowErrs...)
			if err != nil {
				msg := fmt.Sprintf("读取文件时发生错误 (%s): %v", path, err)
				summary.Errors = append(summary.Errors, msg)
				summary.SkippedFiles++
				s.logger.Warn(msg)
				continue
			}
			summary.TotalDraws += draws
			summary.TotalNumbers += numbers
			if draws > 0 {
				summary.ProcessedFiles++
			} else {
				summary.SkippedFiles++
			}
			s.logger.Infof("  [%d/%d] %s: 导入 %d 期", i+1, len(files), filepath.Base(path), draws)
		}
	}

	summary.ErrorPreview, summary.MoreErrors = previewErrors(summary.Errors, s.cfg.Import.ErrorPreviewCap)

	if summary.GameTotals, err = s.drawRepo.GameTotals(ctx); err != nil {
		return nil, err
	}

	if err := s.saveRun(ctx, summary, startedAt); err != nil {
		// 审计记录写失败不吞掉已完成的导入，但要让调用方知道
		s.logger.WithError(err).Error("保存导入记录失败")
	}

	s.logger.Infof("导入完成：%d/%d 个文件，%d 期，%d 个号码，%d 条错误",
		summary.ProcessedFiles, summary.TotalFiles, summary.TotalDraws, summary.TotalNumbers, len(summary.Errors))
	return summary, nil
}

// LatestRun 最近一次导入的审计记录
func (s *ImportService) LatestRun(ctx context.Context) (*model.ImportRun, error) {
	return s.runRepo.LatestRun(ctx)
}

func (s *ImportService) saveRun(ctx context.Context, summary *ImportSummary, startedAt time.Time) error {
	errsJSON, err := json.Marshal(summary.Errors)
	if err != nil {
		return fmt.Errorf("序列化错误明细失败: %w", err)
	}
	return s.runRepo.SaveRun(ctx, &model.ImportRun{
		RunUUID:        summary.RunID,
		TotalFiles:     summary.TotalFiles,
		ProcessedFiles: summary.ProcessedFiles,
		SkippedFiles:   summary.SkippedFiles,
		TotalDraws:     summary.TotalDraws,
		TotalNumbers:   summary.TotalNumbers,
		Errors:         errsJSON,
		StartedAt:      startedAt,
		FinishedAt:     time.Now(),
	})
}

// normalizeDate 把 YYYY/MM/DD 转成 ISO 的 YYYY-MM-DD，解析失败时原样返回
func normalizeDate(raw string) string {
	if t, err := time.Parse("2006/01/02", raw); err == nil {
		return t.Format("2006-01-02")
	}
	return raw
}

// cell 取单元格并去空白。列不存在或行太短时 ok=false
func cell(colIndex map[string]int, row []string, col string) (string, bool) {
	i, ok := colIndex[col]
	if !ok || i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}

// optionalInt 可选整数列：列缺失或空白视为 null，非空但非法则报错
func optionalInt(colIndex map[string]int, row []string, col string) (*int64, error) {
	v, ok := cell(colIndex, row, col)
	if !ok || v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("列 %s 的值 %q 非法: %w", col, v, err)
	}
	return &n, nil
}

// previewErrors 截断错误列表用于展示，返回预览与被折叠的条数
func previewErrors(errs []string, limit int) ([]string, int) {
	if len(errs) <= limit {
		return errs, 0
	}
	return errs[:limit], len(errs) - limit
}

func orNA(drawNumber string) string {
	if drawNumber == "" {
		return "N/A"
	}
	return drawNumber
}
