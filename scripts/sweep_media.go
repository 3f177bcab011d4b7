// 手动清理孤立媒体
//
// 主应用按 media.sweep_cron 定时执行同样的清理。
// 此脚本用于手动触发，例如批量删除题目之后立即回收存储空间。
//
// 用法: go run scripts/sweep_media.go [-config configs]

package main

import (
	"baitapvui_backend/internal/config"
	"baitapvui_backend/internal/repository"
	"baitapvui_backend/internal/service"
	"baitapvui_backend/pkg/database"
	"baitapvui_backend/pkg/logger"
	"context"
	"flag"
	"log"
	"time"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	timeout := flag.Duration("timeout", 10*time.Minute, "最长执行时间")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	media := service.NewMediaService(
		repository.NewMediaRepository(db),
		service.NewStorageService(cfg),
		cfg.Media,
		logger.Log.Named("media"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Println("开始清理孤立媒体...")
	n, err := media.SweepOrphans(ctx)
	if err != nil {
		log.Fatalf("清理中断，已删除 %d 个: %v", n, err)
	}
	log.Printf("清理完成，共删除 %d 个孤立媒体", n)
}
