package repository

import (
	"context"
	"errors"
	"fmt"

	"LottoStats/internal/model"

	"gorm.io/gorm"
)

// ErrNoImportRun 尚未执行过任何导入
var ErrNoImportRun = errors.New("没有导入记录")

// RunRepository 导入批次审计仓储
type RunRepository interface {
	// SaveRun 落库一次导入的汇总记录
	SaveRun(ctx context.Context, run *model.ImportRun) error
	// LatestRun 最近一次导入记录，没有则返回 ErrNoImportRun
	LatestRun(ctx context.Context) (*model.ImportRun, error)
}

type runRepository struct {
	db *gorm.DB
}

// NewRunRepository 创建 RunRepository 实例
func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) SaveRun(ctx context.Context, run *model.ImportRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("保存导入记录失败: %w", err)
	}
	return nil
}

func (r *runRepository) LatestRun(ctx context.Context) (*model.ImportRun, error) {
	var run model.ImportRun
	err := r.db.WithContext(ctx).Order("started_at DESC, id DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoImportRun
	}
	if err != nil {
		return nil, fmt.Errorf("查询导入记录失败: %w", err)
	}
	return &run, nil
}
