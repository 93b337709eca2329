package search

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"corphist/aggregation"
	"corphist/database"
	"corphist/exporter"
	"corphist/logger"
	"corphist/model"
	"corphist/report"
)

// SessionCookie 為保存查詢結果的 cookie 名稱。
const SessionCookie = "corphist_session"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sheetView struct {
	model.ReportSheet
	Metrics []aggregation.Metric `json:"metrics,omitempty"`
}

type searchResponse struct {
	Criteria []Field        `json:"criteria"`
	Sheets   []sheetView    `json:"sheets"`
	Failures []QueryFailure `json:"failures"`
	Notices  []string       `json:"notices"`
}

// ipoEmptyNotice 為上市櫃無資料時的提示。
const ipoEmptyNotice = "無符合條件的上市櫃資料"

// GetYearsHandler 回傳申請年度與收案組別的選項。
func GetYearsHandler(db database.DBTX, log *zap.Logger) http.HandlerFunc {
	log = logger.OrNop(log)
	return func(w http.ResponseWriter, r *http.Request) {
		years, err := database.GetApplyYears(db)
		if err != nil {
			log.Error("Failed to get apply years", zap.Error(err))
			writeJSONError(w, "申請年度讀取失敗", http.StatusInternalServerError)
			return
		}
		groups := []string{}
		for _, g := range model.SegmentGroups() {
			groups = append(groups, g.Label())
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"years":  years,
			"groups": groups,
		})
	}
}

// SearchHandler 執行查詢，將結果保存於呼叫者的 Session 並以 JSON 回傳。
func SearchHandler(svc *Service, store *report.SessionStore, log *zap.Logger) http.HandlerFunc {
	log = logger.OrNop(log)
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, "Invalid request", http.StatusBadRequest)
			return
		}
		criteria, err := model.NewFilterCriteria(
			r.Form.Get("companyId"),
			r.Form.Get("companyName"),
			r.Form.Get("year"),
			r.Form.Get("group"),
		)
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		sess := sessionFor(w, r, store)
		res := svc.Run(criteria, sess)

		resp := searchResponse{
			Criteria: EchoCriteria(criteria),
			Failures: res.Failures,
			Notices:  []string{},
		}
		if resp.Failures == nil {
			resp.Failures = []QueryFailure{}
		}
		resp.Sheets = append(resp.Sheets,
			withMetrics(res.RD, res.RDSummary, aggregation.RDProfile),
			withMetrics(res.Smart, res.SmartSummary, aggregation.SmartProfile),
		)
		if res.IPO.Len() > 0 {
			resp.Sheets = append(resp.Sheets, sheetView{ReportSheet: res.IPO})
		} else if !res.Failed(report.IPOSheetName) {
			resp.Notices = append(resp.Notices, ipoEmptyNotice)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("Failed to encode search response", zap.Error(err))
		}
	}
}

// withMetrics 只在有資料時附上統計摘要。
func withMetrics(sheet model.ReportSheet, s aggregation.Summary, p aggregation.Profile) sheetView {
	v := sheetView{ReportSheet: sheet}
	if sheet.Len() > 0 {
		v.Metrics = s.Metrics(p)
	}
	return v
}

// ExportHandler 將呼叫者 Session 中的報表匯出為 xlsx。匯出失敗時報表仍保留，可重試。
func ExportHandler(store *report.SessionStore, log *zap.Logger) http.HandlerFunc {
	log = logger.OrNop(log)
	return func(w http.ResponseWriter, r *http.Request) {
		var sess *report.Session
		if ck, err := r.Cookie(SessionCookie); err == nil {
			sess = store.Get(ck.Value)
		}
		if sess == nil || !sess.HasSheets() {
			writeJSONError(w, "沒有可匯出的查詢結果，請先查詢", http.StatusNotFound)
			return
		}

		criteria, _ := sess.Snapshot()
		fileName := exporter.FileName(criteria, time.Now())

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(fileName))
		tw := &trackingWriter{ResponseWriter: w}
		if err := exporter.ExportSession(tw, sess); err != nil {
			log.Error("Export failed", zap.String("file", fileName), zap.Error(err))
			if tw.wrote {
				// 回應已開始送出，不能再改成 JSON 錯誤
				return
			}
			w.Header().Del("Content-Disposition")
			status := http.StatusInternalServerError
			if errors.Is(err, exporter.ErrNoSheets) {
				status = http.StatusNotFound
			}
			writeJSONError(w, "匯出失敗，請重試", status)
			return
		}
		log.Info("Exported workbook", zap.String("file", fileName))
	}
}

// trackingWriter 記錄是否已經開始寫出回應本體。
type trackingWriter struct {
	http.ResponseWriter
	wrote bool
}

func (tw *trackingWriter) Write(p []byte) (int, error) {
	tw.wrote = true
	return tw.ResponseWriter.Write(p)
}

func sessionFor(w http.ResponseWriter, r *http.Request, store *report.SessionStore) *report.Session {
	var id string
	if ck, err := r.Cookie(SessionCookie); err == nil {
		id = ck.Value
	}
	sess := store.GetOrCreate(id)
	if sess.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": message,
	})
}
