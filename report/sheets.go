package report

import (
	"corphist/model"
	"corphist/roc"
)

const (
	RDSheetName    = "研發資料"
	SmartSheetName = "設備資料"
	IPOSheetName   = "上市櫃資料"
)

// RDColumns 研發投抵的欄位對照（依 SELECT 順序）。
var RDColumns = []model.Column{
	{Key: "apply_year", Label: "申請年度"},
	{Key: "company_id", Label: "公司統編"},
	{Key: "company_name", Label: "公司名稱"},
	{Key: "project_name", Label: "計畫名稱"},
	{Key: "group", Label: "收案組別"},
	{Key: "type_innovation_sme", Label: "產創/中小企"},
	{Key: "industry_category", Label: "產業類別"},
	{Key: "apply_amount", Label: "申請金額"},
	{Key: "approved", Label: "是否通過"},
}

// SmartColumns 設備投抵的欄位對照。收案組別為推導欄位，放在最後。
var SmartColumns = []model.Column{
	{Key: "apply_year", Label: "申請年度"},
	{Key: "company_id", Label: "公司統編"},
	{Key: "company_name", Label: "公司名稱"},
	{Key: "plan_name", Label: "計畫名稱"},
	{Key: "industry_category", Label: "產業類別"},
	{Key: "item_no", Label: "項目編號"},
	{Key: "item_name", Label: "項目名稱"},
	{Key: "item_type", Label: "項目類型"},
	{Key: "total_amount", Label: "購買總金額"},
	{Key: "subsidy", Label: "補助款"},
	{Key: "apply_amount", Label: "申請金額"},
	{Key: "first_review", Label: "初審結果"},
	{Key: "final_review", Label: "複審結果"},
	{Key: "mapped_group", Label: "收案組別"},
}

// IPOColumns 上市櫃的欄位對照。
var IPOColumns = []model.Column{
	{Key: "company_id", Label: "公司統編"},
	{Key: "company_name", Label: "公司名稱"},
	{Key: "capital", Label: "實收資本額"},
	{Key: "apply_date", Label: "申請日期"},
	{Key: "visit_date", Label: "拜會日期"},
	{Key: "meeting_date", Label: "評估會議日期"},
	{Key: "ipo_type", Label: "上市櫃類型"},
	{Key: "group", Label: "業務組別"},
	{Key: "country", Label: "國內/國外"},
	{Key: "broker", Label: "主辦券商"},
	{Key: "status", Label: "拜會時狀態"},
	{Key: "result", Label: "申請結果"},
	{Key: "remark", Label: "結果備註"},
}

func headers(cols []model.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Label
	}
	return out
}

// RDSheet 把研發投抵查詢結果轉成報表。
func RDSheet(rows []model.RDRow) model.ReportSheet {
	sheet := model.ReportSheet{Name: RDSheetName, Headers: headers(RDColumns), Rows: make([][]interface{}, 0, len(rows))}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []interface{}{
			r.ApplyYear.Cell(),
			r.CompanyID.Cell(),
			r.CompanyName.Cell(),
			r.ProjectName.Cell(),
			r.Group.Cell(),
			r.TypeInnovationSME.Cell(),
			r.IndustryCategory.Cell(),
			r.ApplyAmount.Cell(),
			r.Approved.Cell(),
		})
	}
	return sheet
}

// SmartSheet 把設備投抵查詢結果（已完成組別推導）轉成報表。未分類的組別留空。
func SmartSheet(rows []model.SmartRow) model.ReportSheet {
	sheet := model.ReportSheet{Name: SmartSheetName, Headers: headers(SmartColumns), Rows: make([][]interface{}, 0, len(rows))}
	for _, r := range rows {
		var group interface{}
		if r.MappedGroup.IsSet() {
			group = r.MappedGroup.Label()
		}
		sheet.Rows = append(sheet.Rows, []interface{}{
			r.ApplyYear.Cell(),
			r.CompanyID.Cell(),
			r.CompanyName.Cell(),
			r.PlanName.Cell(),
			r.IndustryCategory.Cell(),
			r.ItemNo.Cell(),
			r.ItemName.Cell(),
			r.ItemType.Cell(),
			r.TotalAmount.Cell(),
			r.Subsidy.Cell(),
			r.ApplyAmount.Cell(),
			r.FirstReview.Cell(),
			r.FinalReview.Cell(),
			group,
		})
	}
	return sheet
}

// IPOSheet 把上市櫃查詢結果轉成報表，三個日期欄改為民國紀年字串。
// 個別日期無法解析時只會留空，不影響其他欄位與列。
func IPOSheet(rows []model.IPORow) model.ReportSheet {
	sheet := model.ReportSheet{Name: IPOSheetName, Headers: headers(IPOColumns), Rows: make([][]interface{}, 0, len(rows))}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []interface{}{
			r.CompanyID.Cell(),
			r.CompanyName.Cell(),
			r.Capital.Cell(),
			roc.FromValue(r.ApplyDate.Cell()),
			roc.FromValue(r.VisitDate.Cell()),
			roc.FromValue(r.MeetingDate.Cell()),
			r.IpoType.Cell(),
			r.Group.Cell(),
			r.Country.Cell(),
			r.Broker.Cell(),
			r.Status.Cell(),
			r.Result.Cell(),
			r.Remark.Cell(),
		})
	}
	return sheet
}
