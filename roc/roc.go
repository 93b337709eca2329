// Package roc 將西元日期轉成民國紀年字串（例：1998-03-15 → 87/3/15）。
package roc

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// YearOffset 為民國紀年與西元年的差。
const YearOffset = 1911

// FormatDate 回傳 "<民國年>/<月>/<日>"，不補零。零值時間回傳空字串。
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%d/%d", t.Year()-YearOffset, int(t.Month()), t.Day())
}

// FromValue 接受資料庫讀出的任意值（time.Time、字串、nil）。
// 無法解析時回傳空字串，不回傳錯誤。
func FromValue(v interface{}) string {
	switch d := v.(type) {
	case nil:
		return ""
	case time.Time:
		return FormatDate(d)
	case *time.Time:
		if d == nil {
			return ""
		}
		return FormatDate(*d)
	case []byte:
		return FromString(string(d))
	case string:
		return FromString(d)
	}
	return ""
}

// FromString 解析常見的日期寫法後轉為民國紀年。
func FromString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return ""
	}
	return FormatDate(t)
}
