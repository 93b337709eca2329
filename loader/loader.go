package loader

import (
	"bufio"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	"corphist/logger"
)

//go:embed schema.sql
var schemaSQL string

var (
	ErrUnknownTable    = errors.New("unknown table")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateColumn = errors.New("duplicate column")
)

// 各資料表可匯入的欄位。CSV 表頭必須是這些欄位名稱的子集合。
var tableColumns = map[string][]string{
	"rd_project":    {"apply_year", "company_id", "company_name", "project_name", "group", "type_innovation_sme", "industry_category"},
	"rd_item":       {"apply_year", "company_id", "project_name", "apply_amount", "approved"},
	"smart_project": {"apply_year", "company_id", "company_name", "plan_name", "industry_category"},
	"smart_item":    {"apply_year", "company_id", "plan_name", "item_no", "item_name", "item_type", "total_amount", "subsidy", "apply_amount", "first_review", "final_review"},
	"ipo_info":      {"company_id", "company_name", "capital", "apply_date", "visit_date", "meeting_date", "ipo_type", "group", "country", "broker", "status", "result", "remark"},
}

// Tables 回傳可匯入的資料表名稱。
func Tables() []string {
	return []string{"rd_project", "rd_item", "smart_project", "smart_item", "ipo_info"}
}

// InitDatabase 套用內建的資料表定義（已存在的表不受影響）。
func InitDatabase(db *sqlx.DB, log *zap.Logger) error {
	log = logger.OrNop(log)
	log.Info("Applying database schema...")
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	log.Info("Schema applied successfully.")
	return nil
}

// Options 為 CSV 匯入選項。
type Options struct {
	Encoding string // "utf-8"（預設）或 "big5"
	Truncate bool   // 匯入前清空資料表
}

// LoadCSV 讀取有表頭的 CSV 並寫入指定資料表，整個檔案在同一個交易中完成。
// 空白儲存格寫入 NULL；讀取失敗的列略過，寫入失敗則整批回滾。
func LoadCSV(db *sqlx.DB, log *zap.Logger, path, table string, opts Options) (int, error) {
	log = logger.OrNop(log)
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("could not open file %s: %w", path, err)
	}
	defer f.Close()

	n, err := LoadCSVReader(db, log, f, table, opts)
	if err != nil {
		return n, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return n, nil
}

// LoadCSVReader 與 LoadCSV 相同，但資料來源為任意 io.Reader。
func LoadCSVReader(db *sqlx.DB, log *zap.Logger, src io.Reader, table string, opts Options) (rowCount int, err error) {
	log = logger.OrNop(log)
	allowed, ok := tableColumns[table]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	r := csv.NewReader(decodeReader(src, opts.Encoding))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}
	columns, err := resolveColumns(header, allowed)
	if err != nil {
		return 0, err
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			log.Warn("Rolling back CSV import", zap.String("table", table), zap.Error(err))
			tx.Rollback()
			return
		}
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("failed to commit import into %s: %w", table, err)
		}
	}()

	if opts.Truncate {
		if _, err = tx.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	stmt, err := tx.Preparex(insertQuery(table, columns))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for %s: %w", table, err)
	}
	defer stmt.Close()

	line := 1
	for {
		row, readErr := r.Read()
		line++
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			log.Warn("Skipping unreadable CSV row", zap.String("table", table), zap.Int("line", line), zap.Error(readErr))
			continue
		}

		args := make([]interface{}, len(columns))
		for i, col := range columns {
			var val string
			if i < len(row) {
				val = strings.TrimSpace(row[i])
			}
			args[i] = convertValue(col, val)
		}
		if _, err = stmt.Exec(args...); err != nil {
			return rowCount, fmt.Errorf("failed to insert line %d into %s: %w", line, table, err)
		}
		rowCount++
	}

	log.Info("CSV import finished", zap.String("table", table), zap.Int("rows", rowCount))
	return rowCount, nil
}

func resolveColumns(header, allowed []string) ([]string, error) {
	allowedSet := make(map[string]bool, len(allowed))
	for _, c := range allowed {
		allowedSet[c] = true
	}
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if !allowedSet[h] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, h)
		}
		if seen[h] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, h)
		}
		seen[h] = true
		columns[i] = h
	}
	return columns, nil
}

func insertQuery(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = `"` + c + `"`
	}
	placeholders := strings.Repeat("?,", len(columns)-1) + "?"
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(quoted, ", "), placeholders)
}

// convertValue：空字串為 NULL，申請年度可解析時存成整數，其餘原樣交給 SQLite 的欄位親和性處理。
func convertValue(column, val string) interface{} {
	if val == "" {
		return nil
	}
	if column == "apply_year" {
		if y, err := strconv.ParseInt(val, 10, 64); err == nil {
			return y
		}
	}
	return val
}

func decodeReader(src io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "big5", "cp950":
		return transform.NewReader(src, traditionalchinese.Big5.NewDecoder())
	}
	return skipBOM(src)
}

// skipBOM 略過 UTF-8 BOM。
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if peeked, err := br.Peek(3); err == nil && peeked[0] == 0xEF && peeked[1] == 0xBB && peeked[2] == 0xBF {
		br.Discard(3)
	}
	return br
}
