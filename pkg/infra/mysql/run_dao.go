package mysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// RunRecord 一次管线运行的归档记录
type RunRecord struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	RunID        string    `gorm:"column:run_id;size:64;index"`
	Mode         string    `gorm:"column:mode;size:32"`
	DryRun       bool      `gorm:"column:dry_run"`
	PackageCount int       `gorm:"column:package_count"`
	SuccessCount int       `gorm:"column:success_count"`
	FailedCount  int       `gorm:"column:failed_count"`
	SkippedCount int       `gorm:"column:skipped_count"`
	ArtifactPath string    `gorm:"column:artifact_path;size:512"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName 指定表名
func (RunRecord) TableName() string {
	return "cartsync_runs"
}

// RunDAO 运行记录数据访问对象
type RunDAO struct {
	db *gorm.DB
}

// NewRunDAO 创建 RunDAO 实例（自动建表）
func NewRunDAO(dsn string) (*RunDAO, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate run table: %w", err)
	}

	return &RunDAO{db: db}, nil
}

// SaveRun 保存一次运行记录
func (dao *RunDAO) SaveRun(ctx context.Context, rec *RunRecord) error {
	result := dao.db.WithContext(ctx).Create(rec)
	if result.Error != nil {
		return fmt.Errorf("failed to save run record: %w", result.Error)
	}
	return nil
}

// RecentRuns 查询最近 n 次运行记录
func (dao *RunDAO) RecentRuns(ctx context.Context, n int) ([]RunRecord, error) {
	var records []RunRecord
	result := dao.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(n).
		Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query run records: %w", result.Error)
	}
	return records, nil
}

// Close 关闭数据库连接
func (dao *RunDAO) Close() error {
	sqlDB, err := dao.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
