package search

import (
	"strconv"

	"go.uber.org/zap"

	"corphist/aggregation"
	"corphist/category"
	"corphist/database"
	"corphist/logger"
	"corphist/model"
	"corphist/report"
)

// QueryFailure 記錄三個查詢中某一個的失敗，不影響其他查詢。
type QueryFailure struct {
	Query   string `json:"query"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Result 為一次查詢的完整結果。
type Result struct {
	Criteria model.FilterCriteria

	RD    model.ReportSheet
	Smart model.ReportSheet
	IPO   model.ReportSheet

	// Sheets 為要保存／匯出的報表集合（上市櫃無資料時不含）。
	Sheets []model.ReportSheet

	RDSummary    aggregation.Summary
	SmartSummary aggregation.Summary

	Failures []QueryFailure
}

// Failed 回報指定報表的查詢是否失敗。
func (r Result) Failed(sheetName string) bool {
	for _, f := range r.Failures {
		if f.Query == sheetName {
			return true
		}
	}
	return false
}

// Service 執行 條件 → 查詢 → 分類 → 統計 → 組報表 的流程。
type Service struct {
	db  database.DBTX
	log *zap.Logger
}

func NewService(db database.DBTX, log *zap.Logger) *Service {
	return &Service{db: db, log: logger.OrNop(log)}
}

// Run 依序執行研發、設備、上市櫃三個查詢。任一查詢失敗只記錄在 Failures，
// 其他查詢照常執行；失敗的研發／設備報表以空表保留。
// sess 不為 nil 時，以本次結果取代 Session 中的報表集合。
func (s *Service) Run(c model.FilterCriteria, sess *report.Session) Result {
	res := Result{Criteria: c}

	rdRows, err := database.SearchRDProjects(s.db, c)
	if err != nil {
		res.fail(report.RDSheetName, err, s.log)
	}
	res.RD = report.RDSheet(rdRows)
	res.RDSummary = aggregation.Summarize(res.RD, aggregation.RDProfile)

	smartRows, err := database.SearchSmartProjects(s.db, c)
	if err != nil {
		res.fail(report.SmartSheetName, err, s.log)
	}
	smartRows = category.NormalizeSmartRows(smartRows, c.SegmentGroup)
	res.Smart = report.SmartSheet(smartRows)
	res.SmartSummary = aggregation.Summarize(res.Smart, aggregation.SmartProfile)

	ipoRows, err := database.SearchIPOCases(s.db, c)
	if err != nil {
		res.fail(report.IPOSheetName, err, s.log)
	}
	res.IPO = report.IPOSheet(ipoRows)

	res.Sheets = report.Assemble(res.RD, res.Smart, &res.IPO)
	if sess != nil {
		sess.Replace(c, res.Sheets)
	}

	s.log.Info("Search finished",
		zap.Int("rd_rows", res.RD.Len()),
		zap.Int("smart_rows", res.Smart.Len()),
		zap.Int("ipo_rows", res.IPO.Len()),
		zap.Int("failures", len(res.Failures)),
	)
	return res
}

func (r *Result) fail(query string, err error, log *zap.Logger) {
	log.Warn("Query failed", zap.String("query", query), zap.Error(err))
	r.Failures = append(r.Failures, QueryFailure{
		Query:   query,
		Message: query + "查詢失敗：" + err.Error(),
		Err:     err,
	})
}

// Field 為畫面顯示用的「名稱：值」。
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// EchoCriteria 回傳查詢條件摘要，未填欄位以（未填）／（未選）表示。
func EchoCriteria(c model.FilterCriteria) []Field {
	id, name, year, group := "（未填）", "（未填）", "（未選）", "（未填）"
	if c.CompanyID != nil && *c.CompanyID != "" {
		id = *c.CompanyID
	}
	if c.CompanyName != nil && *c.CompanyName != "" {
		name = *c.CompanyName
	}
	if y, ok := c.Year(); ok {
		year = strconv.Itoa(y)
	}
	if c.SegmentGroup.IsSet() {
		group = c.SegmentGroup.Label()
	}
	return []Field{
		{Label: "公司統編", Value: id},
		{Label: "公司名稱", Value: name},
		{Label: "申請年度", Value: year},
		{Label: "收案組別", Value: group},
	}
}
