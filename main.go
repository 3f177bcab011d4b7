// @title BaiTapVui 后端 API
// @version 1.0
// @description BaiTapVui 作业题目与题目编辑器服务。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"baitapvui_backend/internal/app"
	"baitapvui_backend/internal/config"
	"baitapvui_backend/pkg/configwatcher"
	"baitapvui_backend/pkg/logger"
	"context"
	"flag"
	"log"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		file := filepath.Join(*configDir, "config.yaml")
		if err := configwatcher.WatchConfig(ctx, file, time.Second, application.ApplyConfig); err != nil {
			logger.Log.Error("Config hot reload disabled", zap.Error(err))
		}
	}()

	application.Run()
}
