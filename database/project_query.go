package database

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"corphist/model"
)

// 研發投抵：計畫 LEFT JOIN 申請項目（申請年度、統編、計畫名稱）
const rdSearchQuery = `
	SELECT
		a.apply_year, a.company_id, a.company_name, a.project_name,
		a."group" AS "group", a.type_innovation_sme, a.industry_category,
		b.apply_amount, b.approved
	FROM rd_project AS a
	LEFT JOIN rd_item AS b
		ON a.apply_year = b.apply_year
		AND a.company_id = b.company_id
		AND a.project_name = b.project_name
	WHERE `

// 設備投抵：計畫 LEFT JOIN 設備項目（申請年度、統編、計畫名稱）
const smartSearchQuery = `
	SELECT
		a.apply_year, a.company_id, a.company_name, a.plan_name, a.industry_category,
		b.item_no, b.item_name, b.item_type, b.total_amount, b.subsidy,
		b.apply_amount, b.first_review, b.final_review
	FROM smart_project AS a
	LEFT JOIN smart_item AS b
		ON a.apply_year = b.apply_year
		AND a.company_id = b.company_id
		AND a.plan_name = b.plan_name
	WHERE `

const ipoSearchQuery = `
	SELECT
		company_id, company_name, capital, apply_date, visit_date, meeting_date,
		ipo_type, "group" AS "group", country, broker, status, result, remark
	FROM ipo_info
	WHERE `

// SearchRDProjects 依條件查詢研發投抵資料。組別直接在 SQL 中比對。
func SearchRDProjects(dbtx DBTX, c model.FilterCriteria) ([]model.RDRow, error) {
	where, args := BuildPredicate(c, "a", true).SQL()

	rows := []model.RDRow{}
	if err := dbtx.Select(&rows, dbtx.Rebind(rdSearchQuery+where), args...); err != nil {
		return nil, fmt.Errorf("failed to search rd projects: %w", err)
	}
	return rows, nil
}

// SearchSmartProjects 依條件查詢設備投抵資料。
// smart_project 沒有組別欄位，組別篩選由呼叫端在分類後進行。
func SearchSmartProjects(dbtx DBTX, c model.FilterCriteria) ([]model.SmartRow, error) {
	where, args := BuildPredicate(c, "a", false).SQL()

	rows := []model.SmartRow{}
	if err := dbtx.Select(&rows, dbtx.Rebind(smartSearchQuery+where), args...); err != nil {
		return nil, fmt.Errorf("failed to search smart projects: %w", err)
	}
	return rows, nil
}

// SearchIPOCases 依條件查詢上市櫃資料。
func SearchIPOCases(dbtx DBTX, c model.FilterCriteria) ([]model.IPORow, error) {
	where, args := BuildIPOPredicate(c).SQL()

	rows := []model.IPORow{}
	if err := dbtx.Select(&rows, dbtx.Rebind(ipoSearchQuery+where), args...); err != nil {
		return nil, fmt.Errorf("failed to search ipo cases: %w", err)
	}
	return rows, nil
}

// GetApplyYears 回傳研發與設備計畫表中出現過的申請年度，由新到舊排列。
func GetApplyYears(dbtx DBTX) ([]int, error) {
	const q = `
		SELECT DISTINCT apply_year FROM rd_project
		UNION
		SELECT DISTINCT apply_year FROM smart_project`

	var values []model.Field
	if err := dbtx.Select(&values, q); err != nil {
		return nil, fmt.Errorf("failed to get apply years: %w", err)
	}

	seen := make(map[int]bool)
	years := []int{}
	for _, v := range values {
		y, ok := toYear(v)
		if !ok || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func toYear(f model.Field) (int, bool) {
	if !f.Valid {
		return 0, false
	}
	switch v := f.V.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), v == float64(int(v))
	}
	y, err := strconv.Atoi(strings.TrimSpace(f.String()))
	if err != nil {
		return 0, false
	}
	return y, true
}
