package exporter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"corphist/model"
	"corphist/report"
)

// MaxSheetNameLen 為 Excel 工作表名稱的字元數上限。
const MaxSheetNameLen = 31

// ErrNoSheets 表示沒有可匯出的報表。
var ErrNoSheets = errors.New("no report sheets to export")

// SheetNames 依報表順序產生工作表名稱：超過上限時截斷；
// 截斷後與前面的名稱重複時，在尾端加上 (2)、(3)… 並再截斷本體以符合上限。
func SheetNames(sheets []model.ReportSheet) []string {
	names := make([]string, len(sheets))
	used := make(map[string]bool, len(sheets))
	for i, s := range sheets {
		base := truncate(s.Name, MaxSheetNameLen)
		if base == "" {
			base = "Sheet" + strconv.Itoa(i+1)
		}
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			suffix := "(" + strconv.Itoa(n) + ")"
			name = truncate(base, MaxSheetNameLen-len(suffix)) + suffix
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// WriteWorkbook 將報表集合寫成單一 xlsx：每張報表一頁，第一列為欄名。
func WriteWorkbook(w io.Writer, sheets []model.ReportSheet) error {
	if len(sheets) == 0 {
		return ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	names := SheetNames(sheets)
	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, names[i]); err != nil {
				return fmt.Errorf("failed to rename sheet %s: %w", names[i], err)
			}
		} else if _, err := f.NewSheet(names[i]); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", names[i], err)
		}
		if err := writeSheet(f, names[i], sheet); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", names[i], err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, sheet model.ReportSheet) error {
	header := make([]interface{}, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// ExportSession 匯出 Session 中的報表並於成功後清空。
// 產生或寫出失敗時 Session 保持原狀，可直接重試。
func ExportSession(w io.Writer, sess *report.Session) error {
	_, sheets := sess.Snapshot()
	if len(sheets) == 0 {
		return ErrNoSheets
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, sheets); err != nil {
		return err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	sess.Clear()
	return nil
}

var fileNameReplacer = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
)

// FileName 產生匯出檔名：查詢結果_<公司名稱或統編|ALL>_<年度|ALL>_<時間>.xlsx。
// 公司名稱與統編同時填寫時，以實際生效的公司名稱命名。
func FileName(c model.FilterCriteria, now time.Time) string {
	label := "ALL"
	if name, ok := c.NameFilter(); ok {
		label = name
	} else if id, ok := c.IDFilter(); ok {
		label = id
	}
	year := "ALL"
	if y, ok := c.Year(); ok {
		year = strconv.Itoa(y)
	}
	name := fmt.Sprintf("查詢結果_%s_%s_%s.xlsx", label, year, now.Format("20060102_150405"))
	return fileNameReplacer.Replace(name)
}
