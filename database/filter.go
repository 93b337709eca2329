package database

import (
	"strconv"
	"strings"

	"corphist/model"
)

const (
	OpEq   = "="
	OpLike = "LIKE"
)

// Clause 是一個比較條件。Column 只能是程式內固定的欄位運算式，
// 使用者輸入一律放在 Value 由驅動程式綁定。
type Clause struct {
	Column string
	Op     string
	Value  interface{}
}

// Predicate 是以 AND 串接的條件集合。沒有條件時等同 1=1。
type Predicate struct {
	Clauses []Clause
}

// SQL 產生 WHERE 子句本體與對應的綁定參數。
func (p Predicate) SQL() (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("1=1")
	args := make([]interface{}, 0, len(p.Clauses))
	for _, c := range p.Clauses {
		sb.WriteString(" AND ")
		sb.WriteString(c.Column)
		if c.Op == OpLike {
			sb.WriteString(` LIKE ? ESCAPE '\'`)
		} else {
			sb.WriteString(" " + c.Op + " ?")
		}
		args = append(args, c.Value)
	}
	return sb.String(), args
}

// BuildPredicate 為計畫類資料表（研發、設備）組出條件。
// 公司名稱優先於統編；只有 usesExplicitGroupField 為 true 且有選組別時才比對組別欄位。
func BuildPredicate(c model.FilterCriteria, alias string, usesExplicitGroupField bool) Predicate {
	p := Predicate{Clauses: identityClauses(c, alias)}
	if year, ok := c.Year(); ok {
		p.Clauses = append(p.Clauses, Clause{Column: qualify(alias, "apply_year"), Op: OpEq, Value: year})
	}
	if usesExplicitGroupField && c.SegmentGroup.IsSet() {
		p.Clauses = append(p.Clauses, groupClause(c, alias))
	}
	return p
}

// BuildIPOPredicate 為上市櫃資料表組出條件。ipo_info 沒有申請年度欄位，
// 年度以申請日期的西元年比對，因此選了年度時，尚未填申請日期的案件
// （例如仍在輔導中）不會出現。舊版查詢工具的上市櫃查詢不套用年度條件。
func BuildIPOPredicate(c model.FilterCriteria) Predicate {
	p := Predicate{Clauses: identityClauses(c, "")}
	if year, ok := c.Year(); ok {
		p.Clauses = append(p.Clauses, Clause{
			Column: "substr(trim(apply_date), 1, 4)",
			Op:     OpEq,
			Value:  strconv.Itoa(year),
		})
	}
	if c.SegmentGroup.IsSet() {
		p.Clauses = append(p.Clauses, groupClause(c, ""))
	}
	return p
}

func identityClauses(c model.FilterCriteria, alias string) []Clause {
	if name, ok := c.NameFilter(); ok {
		return []Clause{{Column: qualify(alias, "company_name"), Op: OpLike, Value: "%" + escapeLike(name) + "%"}}
	}
	if id, ok := c.IDFilter(); ok {
		return []Clause{{Column: qualify(alias, "company_id"), Op: OpEq, Value: id}}
	}
	return nil
}

func groupClause(c model.FilterCriteria, alias string) Clause {
	return Clause{Column: "trim(" + qualify(alias, `"group"`) + ")", Op: OpEq, Value: c.SegmentGroup.Label()}
}

func qualify(alias, column string) string {
	if alias == "" {
		return column
	}
	return alias + "." + column
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike 讓 % 與 _ 只當一般字元比對。
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
