package aggregation

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"corphist/model"
)

var hundred = decimal.NewFromInt(100)

// Profile 為各資料族的統計設定。研發與設備的「通過」字樣屬於不同審查流程，不可合併。
type Profile struct {
	AmountColumn    string
	IndicatorColumn string
	ApprovedLiteral string

	CaseLabel         string
	ApprovedCaseLabel string
	CaseRateLabel     string
}

var (
	// RDProfile 研發投抵：是否通過 = 通過
	RDProfile = Profile{
		AmountColumn:      "申請金額",
		IndicatorColumn:   "是否通過",
		ApprovedLiteral:   "通過",
		CaseLabel:         "總件數",
		ApprovedCaseLabel: "通過件數",
		CaseRateLabel:     "案件通過率",
	}
	// SmartProfile 設備投抵：以項目計，複審結果 = 複審項目核定
	SmartProfile = Profile{
		AmountColumn:      "申請金額",
		IndicatorColumn:   "複審結果",
		ApprovedLiteral:   "複審項目核定",
		CaseLabel:         "項目數",
		ApprovedCaseLabel: "通過項目數",
		CaseRateLabel:     "項目通過率",
	}
)

// Summary 為一張報表的統計摘要，只供畫面顯示，不匯出。
type Summary struct {
	TotalCases     int             `json:"totalCases"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	ApprovedCases  int             `json:"approvedCases"`
	ApprovedAmount decimal.Decimal `json:"approvedAmount"`
	CaseRate       decimal.Decimal `json:"caseRate"`
	AmountRate     decimal.Decimal `json:"amountRate"`
}

// Summarize 計算件數、金額與通過率。金額無法轉成數字時視為缺值，不列入加總。
// 件數為 0 時案件通過率為 0；金額總額為 0 時金額通過率為 0。
func Summarize(sheet model.ReportSheet, p Profile) Summary {
	s := Summary{
		TotalCases:     sheet.Len(),
		TotalAmount:    decimal.Zero,
		ApprovedAmount: decimal.Zero,
		CaseRate:       decimal.Zero,
		AmountRate:     decimal.Zero,
	}
	amountIdx := sheet.ColumnIndex(p.AmountColumn)
	indicatorIdx := sheet.ColumnIndex(p.IndicatorColumn)

	for _, row := range sheet.Rows {
		amount, ok := cellAmount(row, amountIdx)
		if ok {
			s.TotalAmount = s.TotalAmount.Add(amount)
		}
		if cellText(row, indicatorIdx) != p.ApprovedLiteral {
			continue
		}
		s.ApprovedCases++
		if ok {
			s.ApprovedAmount = s.ApprovedAmount.Add(amount)
		}
	}

	if s.TotalCases > 0 {
		s.CaseRate = decimal.NewFromInt(int64(s.ApprovedCases)).Div(decimal.NewFromInt(int64(s.TotalCases)))
	}
	if !s.TotalAmount.IsZero() {
		s.AmountRate = s.ApprovedAmount.Div(s.TotalAmount)
	}
	return s
}

// CaseRateText 以一位小數百分比顯示，例如 "50.0%"；件數為 0 時為 "0%"。
func (s Summary) CaseRateText() string {
	if s.TotalCases == 0 {
		return "0%"
	}
	return percent(s.CaseRate)
}

// AmountRateText 與 CaseRateText 相同，金額總額為 0 時為 "0%"。
func (s Summary) AmountRateText() string {
	if s.TotalAmount.IsZero() {
		return "0%"
	}
	return percent(s.AmountRate)
}

// percent 與 FormatAmount 的進位都採銀行家捨入（剛好一半時取偶數），
// 例如 6.25% 顯示為 6.2%，與舊版查詢工具的顯示一致。
func percent(rate decimal.Decimal) string {
	return rate.Mul(hundred).RoundBank(1).StringFixed(1) + "%"
}

var amountPrinter = message.NewPrinter(language.TraditionalChinese)

// FormatAmount 以千分位顯示整數金額，例如 150,000元。
func FormatAmount(d decimal.Decimal) string {
	return amountPrinter.Sprintf("%d元", d.RoundBank(0).IntPart())
}

// Metric 為畫面上的一個指標方塊。
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Metrics 依畫面順序（兩欄三排）回傳指標。
func (s Summary) Metrics(p Profile) []Metric {
	return []Metric{
		{Label: p.CaseLabel, Value: strconv.Itoa(s.TotalCases)},
		{Label: "申請金額總額", Value: FormatAmount(s.TotalAmount)},
		{Label: p.ApprovedCaseLabel, Value: strconv.Itoa(s.ApprovedCases)},
		{Label: "通過金額", Value: FormatAmount(s.ApprovedAmount)},
		{Label: p.CaseRateLabel, Value: s.CaseRateText()},
		{Label: "金額通過率", Value: s.AmountRateText()},
	}
}

func cellAmount(row []interface{}, idx int) (decimal.Decimal, bool) {
	if idx < 0 || idx >= len(row) {
		return decimal.Zero, false
	}
	switch v := row[idx].(type) {
	case int64:
		return decimal.NewFromInt(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case float64:
		return decimal.NewFromFloat(v), true
	case decimal.Decimal:
		return v, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

func cellText(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	if s, ok := row[idx].(string); ok {
		return s
	}
	return ""
}
