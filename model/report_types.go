package model

// ReportSheet 為匯出檔中的一頁：已換成中文欄名的有序表格。
type ReportSheet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	Rows    [][]interface{} `json:"rows"`
}

// Len 回傳資料列數（不含表頭）。
func (s ReportSheet) Len() int {
	return len(s.Rows)
}

// ColumnIndex 依顯示欄名找出欄位位置，找不到回傳 -1。
func (s ReportSheet) ColumnIndex(header string) int {
	for i, h := range s.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// Column 為儲存欄位與顯示欄名的對應。
type Column struct {
	Key   string
	Label string
}
