package model

import (
	"database/sql/driver"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field 原樣接收 SQLite 動態型別的欄位值。
// []byte 會轉為 string，NULL 時 Valid=false。
type Field struct {
	V     interface{}
	Valid bool
}

// Scan implements sql.Scanner.
func (f *Field) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = Field{}
	case []byte:
		*f = Field{V: string(v), Valid: true}
	default:
		*f = Field{V: v, Valid: true}
	}
	return nil
}

// Value implements driver.Valuer.
func (f Field) Value() (driver.Value, error) {
	if !f.Valid {
		return nil, nil
	}
	return f.V, nil
}

// String 回傳欄位的文字表示，NULL 為空字串。
func (f Field) String() string {
	if !f.Valid {
		return ""
	}
	switch v := f.V.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02")
	}
	return ""
}

// Cell 回傳報表儲存格的值。
func (f Field) Cell() interface{} {
	if !f.Valid {
		return nil
	}
	return f.V
}

// Amount 為金額欄位。數值可解析時 Numeric=true；
// 無法解析的文字保留在 Text 供顯示，但不列入加總。
type Amount struct {
	Number  decimal.Decimal
	Text    string
	Numeric bool
	Present bool
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src interface{}) error {
	*a = Amount{}
	switch v := src.(type) {
	case nil:
		return nil
	case int64:
		a.Number, a.Numeric = decimal.NewFromInt(v), true
		a.Text = strconv.FormatInt(v, 10)
	case float64:
		a.Number, a.Numeric = decimal.NewFromFloat(v), true
		a.Text = strconv.FormatFloat(v, 'f', -1, 64)
	case []byte:
		a.setText(string(v))
	case string:
		a.setText(v)
	default:
		a.Text = Field{V: v, Valid: true}.String()
	}
	a.Present = true
	return nil
}

func (a *Amount) setText(s string) {
	a.Text = s
	if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
		a.Number, a.Numeric = d, true
	}
}

// Cell 回傳報表儲存格的值：整數金額為 int64，其餘數值為 float64，無法解析時為原字串。
func (a Amount) Cell() interface{} {
	switch {
	case a.Numeric && a.Number.IsInteger():
		return a.Number.IntPart()
	case a.Numeric:
		return a.Number.InexactFloat64()
	case a.Present:
		return a.Text
	}
	return nil
}

// RDRow 為研發投抵計畫（rd_project）與申請項目（rd_item）的 LEFT JOIN 結果。
type RDRow struct {
	ApplyYear         Field  `db:"apply_year"`
	CompanyID         Field  `db:"company_id"`
	CompanyName       Field  `db:"company_name"`
	ProjectName       Field  `db:"project_name"`
	Group             Field  `db:"group"`
	TypeInnovationSME Field  `db:"type_innovation_sme"`
	IndustryCategory  Field  `db:"industry_category"`
	ApplyAmount       Amount `db:"apply_amount"`
	Approved          Field  `db:"approved"`
}

// SmartRow 為設備投抵計畫（smart_project）與設備項目（smart_item）的 LEFT JOIN 結果。
// MappedGroup 由產業類別推導，不在資料庫中。
type SmartRow struct {
	ApplyYear        Field  `db:"apply_year"`
	CompanyID        Field  `db:"company_id"`
	CompanyName      Field  `db:"company_name"`
	PlanName         Field  `db:"plan_name"`
	IndustryCategory Field  `db:"industry_category"`
	ItemNo           Field  `db:"item_no"`
	ItemName         Field  `db:"item_name"`
	ItemType         Field  `db:"item_type"`
	TotalAmount      Amount `db:"total_amount"`
	Subsidy          Amount `db:"subsidy"`
	ApplyAmount      Amount `db:"apply_amount"`
	FirstReview      Field  `db:"first_review"`
	FinalReview      Field  `db:"final_review"`

	MappedGroup SegmentGroup `db:"-"`
}

// IPORow 為上市櫃輔導案件（ipo_info）。
type IPORow struct {
	CompanyID   Field  `db:"company_id"`
	CompanyName Field  `db:"company_name"`
	Capital     Amount `db:"capital"`
	ApplyDate   Field  `db:"apply_date"`
	VisitDate   Field  `db:"visit_date"`
	MeetingDate Field  `db:"meeting_date"`
	IpoType     Field  `db:"ipo_type"`
	Group       Field  `db:"group"`
	Country     Field  `db:"country"`
	Broker      Field  `db:"broker"`
	Status      Field  `db:"status"`
	Result      Field  `db:"result"`
	Remark      Field  `db:"remark"`
}
