// @title Grader Web API
// @version 1.0
// @description 作业评分前端服务：作业上传、推理高亮、分数录入与成绩导出。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"grader_web/internal/app"
	"grader_web/internal/config"
	"grader_web/pkg/configwatcher"
	"grader_web/pkg/logger"
	"log"
	"path/filepath"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	watch := flag.Bool("watch", true, "配置文件变化时热更新调色板和相似度阈值")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *watch {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := configwatcher.WatchConfig(ctx, filepath.Join(*configDir, "config.yaml"), application.ReloadConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}

	application.Run()
}
