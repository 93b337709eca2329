package exporter

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"corphist/model"
	"corphist/report"
)

func sampleSheets() []model.ReportSheet {
	return []model.ReportSheet{
		{
			Name:    report.RDSheetName,
			Headers: []string{"公司統編", "申請金額", "是否通過"},
			Rows: [][]interface{}{
				{"12345678", int64(100000), "通過"},
				{"12345678", nil, "不通過"},
			},
		},
		{
			Name:    report.SmartSheetName,
			Headers: []string{"公司統編", "申請金額"},
			Rows:    [][]interface{}{},
		},
	}
}

func TestSheetNames(t *testing.T) {
	long := strings.Repeat("研", 40)

	t.Run("truncates to limit", func(t *testing.T) {
		names := SheetNames([]model.ReportSheet{{Name: long}})
		assert.Equal(t, MaxSheetNameLen, utf8.RuneCountInString(names[0]))
	})

	t.Run("collisions after truncation get suffix", func(t *testing.T) {
		names := SheetNames([]model.ReportSheet{{Name: long + "A"}, {Name: long + "B"}, {Name: long + "C"}})
		assert.Equal(t, strings.Repeat("研", 31), names[0])
		assert.Equal(t, strings.Repeat("研", 28)+"(2)", names[1])
		assert.Equal(t, strings.Repeat("研", 28)+"(3)", names[2])
		for _, n := range names {
			assert.LessOrEqual(t, utf8.RuneCountInString(n), MaxSheetNameLen)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		names := SheetNames([]model.ReportSheet{{Name: "Data"}, {Name: "data"}})
		assert.Equal(t, []string{"Data", "data(2)"}, names)
	})

	t.Run("short names unchanged", func(t *testing.T) {
		names := SheetNames(sampleSheets())
		assert.Equal(t, []string{report.RDSheetName, report.SmartSheetName}, names)
	})
}

func readBack(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sampleSheets()))

	f := readBack(t, buf.Bytes())
	assert.Equal(t, []string{report.RDSheetName, report.SmartSheetName}, f.GetSheetList())

	rows, err := f.GetRows(report.RDSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"公司統編", "申請金額", "是否通過"}, rows[0])
	assert.Equal(t, []string{"12345678", "100000", "通過"}, rows[1])
	assert.Equal(t, "不通過", rows[2][2])
	assert.Equal(t, "", rows[2][1])

	rows, err = f.GetRows(report.SmartSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1, "空報表只有表頭")
	assert.Equal(t, []string{"公司統編", "申請金額"}, rows[0])
}

func TestWriteWorkbook_SameContentTwice(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, WriteWorkbook(&a, sampleSheets()))
	require.NoError(t, WriteWorkbook(&b, sampleSheets()))

	fa, fb := readBack(t, a.Bytes()), readBack(t, b.Bytes())
	for _, name := range fa.GetSheetList() {
		ra, err := fa.GetRows(name)
		require.NoError(t, err)
		rb, err := fb.GetRows(name)
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestWriteWorkbook_NoSheets(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteWorkbook(&buf, nil), ErrNoSheets)
	assert.Zero(t, buf.Len())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestExportSession(t *testing.T) {
	t.Run("success clears session", func(t *testing.T) {
		sess := report.NewSession()
		sess.Replace(model.FilterCriteria{}, sampleSheets())

		var buf bytes.Buffer
		require.NoError(t, ExportSession(&buf, sess))
		assert.NotZero(t, buf.Len())
		assert.False(t, sess.HasSheets())
	})

	t.Run("write failure keeps session", func(t *testing.T) {
		sess := report.NewSession()
		sess.Replace(model.FilterCriteria{}, sampleSheets())

		err := ExportSession(failingWriter{}, sess)
		require.Error(t, err)
		assert.True(t, sess.HasSheets())

		var buf bytes.Buffer
		require.NoError(t, ExportSession(&buf, sess), "可重試")
	})

	t.Run("empty session", func(t *testing.T) {
		var buf bytes.Buffer
		assert.ErrorIs(t, ExportSession(&buf, report.NewSession()), ErrNoSheets)
	})
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 1, 2, 15, 4, 5, 0, time.Local)
	id, name, year := "12345678", "甲/乙公司", 2023

	assert.Equal(t, "查詢結果_ALL_ALL_20240102_150405.xlsx", FileName(model.FilterCriteria{}, now))
	assert.Equal(t, "查詢結果_12345678_2023_20240102_150405.xlsx",
		FileName(model.FilterCriteria{CompanyID: &id, ApplicationYear: &year}, now))
	assert.Equal(t, "查詢結果_甲_乙公司_ALL_20240102_150405.xlsx",
		FileName(model.FilterCriteria{CompanyID: &id, CompanyName: &name}, now))
}
