package loader

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"corphist/logger"
)

const maxUploadBytes = 64 << 20

// UploadCSVHandler 接收 multipart 上傳的 CSV（欄位 file），匯入 table 參數指定的資料表。
func UploadCSVHandler(db *sqlx.DB, log *zap.Logger, defaultEncoding string) http.HandlerFunc {
	log = logger.OrNop(log)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		table := r.FormValue("table")
		if table == "" {
			writeJSONError(w, "table is required", http.StatusBadRequest)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, "file is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		opts := Options{
			Encoding: defaultEncoding,
			Truncate: r.FormValue("truncate") == "true",
		}
		if enc := r.FormValue("encoding"); enc != "" {
			opts.Encoding = enc
		}

		n, err := LoadCSVReader(db, log, file, table, opts)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrUnknownTable) || errors.Is(err, ErrUnknownColumn) || errors.Is(err, ErrDuplicateColumn) {
				status = http.StatusBadRequest
			}
			log.Warn("CSV upload failed", zap.String("table", table), zap.Error(err))
			writeJSONError(w, err.Error(), status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "匯入完成",
			"table":   table,
			"rows":    n,
		})
	}
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
