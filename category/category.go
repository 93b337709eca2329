package category

import "corphist/model"

// mapping 為產業類別到收案組別的對照表（多對一）。表外的類別視為未分類。
var mapping = map[string]model.SegmentGroup{
	"資安產業": model.SegmentEmerging,

	"其他無店面零售業-電子購物":  model.SegmentPlatformEconomy,
	"其他無店面零售業-第三方支付": model.SegmentPlatformEconomy,
	"軟體出版業-線上遊戲":     model.SegmentPlatformEconomy,
	"資訊服務業-電簽服務":     model.SegmentPlatformEconomy,
	"軟體出版業-數位內容":     model.SegmentPlatformEconomy,

	"軟體出版業-套裝軟體":     model.SegmentDigitalServices,
	"電腦程式設計、諮詢相關服務業": model.SegmentDigitalServices,
	"資訊服務業":          model.SegmentDigitalServices,
	"資訊服務產業":         model.SegmentDigitalServices,

	"電信產業": model.SegmentTelecom,
	"傳播事業": model.SegmentTelecom,
}

// Resolve 查表取得產業類別對應的組別，需完全相符。
func Resolve(industryCategory string) model.SegmentGroup {
	return mapping[industryCategory]
}

// Categories 回傳對照表中所有產業類別（順序不固定）。
func Categories() map[string]model.SegmentGroup {
	out := make(map[string]model.SegmentGroup, len(mapping))
	for k, v := range mapping {
		out[k] = v
	}
	return out
}

// NormalizeSmartRows 為設備投抵資料補上推導出的組別；
// 有指定組別時只保留推導結果相同的列。輸入順序保持不變。
func NormalizeSmartRows(rows []model.SmartRow, selected model.SegmentGroup) []model.SmartRow {
	out := make([]model.SmartRow, 0, len(rows))
	for _, r := range rows {
		r.MappedGroup = Resolve(r.IndustryCategory.String())
		if selected.IsSet() && r.MappedGroup != selected {
			continue
		}
		out = append(out, r)
	}
	return out
}
