package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corphist/config"
	"corphist/loader"
	"corphist/logger"
)

var (
	// 全域旗標
	configPath string

	cfg config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "corphist",
	Short: "公司歷史資料查詢（研發補助、設備補助、上市櫃輔導）",
	Long: `corphist 依公司統編、公司名稱、申請年度與收案組別查詢三類歷史資料，
並可將查詢結果匯出為 Excel 活頁簿。

不帶子指令執行時等同 serve。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		log = logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "設定檔路徑（預設為 ./corphist.yaml）")

	rootCmd.AddCommand(serveCmd, exportCmd, yearsCmd, loadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDatabase 開啟 SQLite 資料庫，設定允許時套用資料表定義。
func openDatabase() (*sqlx.DB, error) {
	log.Info("Connecting to database...", zap.String("path", cfg.Database.Path))
	dbConn, err := sqlx.Open("sqlite3", cfg.Database.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := dbConn.Ping(); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if cfg.Database.InitSchema {
		if err := loader.InitDatabase(dbConn, log); err != nil {
			dbConn.Close()
			return nil, fmt.Errorf("database initialization failed: %w", err)
		}
	}
	log.Info("Database connection successful.")
	return dbConn, nil
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = exec.Command("xdg-open", url).Start()
	}
	if err != nil {
		log.Warn("failed to open browser", zap.Error(err))
	}
}
