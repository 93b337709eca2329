package database

import "fmt"

// TableCount 為資料表名稱與資料筆數。
type TableCount struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// CountRows 依序回傳各資料表的筆數。tables 必須是已知的資料表名稱（不做跳脫）。
func CountRows(dbtx DBTX, tables []string) ([]TableCount, error) {
	counts := make([]TableCount, 0, len(tables))
	for _, t := range tables {
		var n int
		if err := dbtx.Get(&n, "SELECT COUNT(*) FROM "+t); err != nil {
			return nil, fmt.Errorf("failed to count rows of %s: %w", t, err)
		}
		counts = append(counts, TableCount{Table: t, Rows: n})
	}
	return counts, nil
}
