package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corphist/database"
	"corphist/exporter"
	"corphist/loader"
	"corphist/model"
	"corphist/report"
	"corphist/search"
)

var (
	openBrowserOnStart bool

	exportCompanyID   string
	exportCompanyName string
	exportYear        string
	exportGroup       string
	exportOut         string

	loadTable    string
	loadFile     string
	loadEncoding string
	loadTruncate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "啟動查詢 HTTP 服務",
	RunE:  runServe,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "依條件查詢並直接匯出 Excel 活頁簿",
	Long: `依條件執行一次查詢，將研發資料、設備資料（以及有資料時的上市櫃資料）
寫入一個 xlsx 檔。未指定 --out 時，檔名依查詢條件產生並存放於 export.dir。

Example:
  corphist export --company-id 12345678 --year 2023`,
	RunE: runExport,
}

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "列出資料中出現過的申請年度",
	RunE:  runYears,
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "將 CSV 匯入指定資料表",
	Long: `將有表頭的 CSV 匯入資料表，表頭必須使用資料表的欄位名稱。

可匯入的資料表：` + strings.Join(loader.Tables(), ", "),
	RunE: runLoad,
}

func init() {
	serveCmd.Flags().BoolVar(&openBrowserOnStart, "open", false, "啟動後開啟瀏覽器")
	rootCmd.Flags().BoolVar(&openBrowserOnStart, "open", false, "啟動後開啟瀏覽器")

	exportCmd.Flags().StringVar(&exportCompanyID, "company-id", "", "公司統編")
	exportCmd.Flags().StringVar(&exportCompanyName, "company-name", "", "公司名稱（部分比對，優先於統編）")
	exportCmd.Flags().StringVar(&exportYear, "year", "", "申請年度")
	exportCmd.Flags().StringVar(&exportGroup, "group", "", "收案組別（中文名稱或英文代號）")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "輸出檔案路徑")

	loadCmd.Flags().StringVar(&loadTable, "table", "", "資料表名稱")
	loadCmd.Flags().StringVar(&loadFile, "file", "", "CSV 檔案路徑")
	loadCmd.Flags().StringVar(&loadEncoding, "encoding", "", "CSV 編碼（utf-8 或 big5，預設依設定檔）")
	loadCmd.Flags().BoolVar(&loadTruncate, "truncate", false, "匯入前清空資料表")
	_ = loadCmd.MarkFlagRequired("table")
	_ = loadCmd.MarkFlagRequired("file")
}

func runServe(cmd *cobra.Command, args []string) error {
	dbConn, err := openDatabase()
	if err != nil {
		return err
	}
	defer dbConn.Close()

	mux := http.NewServeMux()
	SetupRoutes(mux, dbConn, cfg, log)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("addr", cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	if openBrowserOnStart {
		openBrowser(localURL(cfg.Server.Addr))
	}

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server start error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func runExport(cmd *cobra.Command, args []string) error {
	criteria, err := model.NewFilterCriteria(exportCompanyID, exportCompanyName, exportYear, exportGroup)
	if err != nil {
		return err
	}

	dbConn, err := openDatabase()
	if err != nil {
		return err
	}
	defer dbConn.Close()

	sess := report.NewSession()
	res := search.NewService(dbConn, log.Named("search")).Run(criteria, sess)
	for _, f := range res.Failures {
		fmt.Fprintln(cmd.ErrOrStderr(), f.Message)
	}

	out := exportOut
	if out == "" {
		out = filepath.Join(cfg.Export.Dir, exporter.FileName(criteria, time.Now()))
	}
	if err := writeExportFile(out, sess); err != nil {
		return err
	}

	log.Info("Exported workbook", zap.String("file", out))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// writeExportFile 寫出活頁簿，失敗時刪除不完整的檔案。
func writeExportFile(path string, sess *report.Session) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("could not close %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return exporter.ExportSession(f, sess)
}

func runYears(cmd *cobra.Command, args []string) error {
	dbConn, err := openDatabase()
	if err != nil {
		return err
	}
	defer dbConn.Close()

	years, err := database.GetApplyYears(dbConn)
	if err != nil {
		return err
	}
	for _, y := range years {
		fmt.Fprintln(cmd.OutOrStdout(), y)
	}
	return nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	dbConn, err := openDatabase()
	if err != nil {
		return err
	}
	defer dbConn.Close()

	enc := loadEncoding
	if enc == "" {
		enc = cfg.Loader.Encoding
	}
	n, err := loader.LoadCSV(dbConn, log.Named("loader"), loadFile, loadTable, loader.Options{
		Encoding: enc,
		Truncate: loadTruncate,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows\n", loadTable, n)
	return nil
}
