// Package testutil 为包测试创建临时数据库
package testutil

import (
	"testing"

	"baitapvui_backend/internal/model"
	"baitapvui_backend/pkg/database"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDB 返回已迁移、仅供当前测试使用的内存 sqlite 数据库
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateAssignment 插入一条属于 creatorID 的草稿作业
func CreateAssignment(t *testing.T, db *gorm.DB, creatorID uint) *model.Assignment {
	t.Helper()
	a := &model.Assignment{Title: "Fractions", Status: model.AssignmentDraft, CreatorID: creatorID}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	return a
}

// CreateMedia 插入一条未关联题目的媒体记录
func CreateMedia(t *testing.T, db *gorm.DB, uploaderID uint) *model.Media {
	t.Helper()
	m := &model.Media{Type: model.MediaImage, ObjectKey: "media/" + uuid.NewString() + ".png",
		URL: "/uploads/x.png", Filename: "x.png", ContentType: "image/png", Size: 10, UploaderID: uploaderID}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create media: %v", err)
	}
	return m
}
