package main

import (
	"os"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/rs/zerolog/log"

	"go-plantcare/config"
	"go-plantcare/jobs"
	"go-plantcare/routes"
)

func main() {
	cfgPath := os.Getenv("PLANTCARE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfgPath).Msg("failed to load config")
	}

	// 初始化日志
	config.InitLogger(cfg.Log)

	// 初始化数据库连接
	config.InitDB(cfg.Database)

	// 监听配置文件，运行中调整日志级别
	stopWatch, err := config.Watch(cfgPath, func(next config.Config) {
		config.ApplyLogLevel(next.Log.Level)
	})
	if err != nil {
		log.Warn().Err(err).Msg("config watcher unavailable")
	} else {
		defer stopWatch()
	}

	// 启动浇水提醒摘要任务
	if cfg.Reminders.DigestEnabled {
		digest := jobs.NewReminderDigest(config.DB)
		if err := digest.Start(cfg.Reminders.DigestCron); err != nil {
			log.Fatal().Err(err).Msg("failed to start reminder digest")
		}
		defer digest.Stop()
	}

	// 设置路由
	r := routes.SetupRouter(config.DB, cfg)

	// 通知systemd就绪
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warn().Err(err).Msg("sd_notify failed")
	}

	// 启动服务器
	log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
