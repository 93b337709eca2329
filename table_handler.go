package main

import (
	"encoding/json"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"corphist/database"
	"corphist/loader"
)

// ListTablesHandler 回傳可匯入的資料表與目前筆數
func ListTablesHandler(db *sqlx.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := database.CountRows(db, loader.Tables())
		if err != nil {
			log.Error("Error counting table rows", zap.Error(err))
			writeJSONError(w, "資料表筆數讀取失敗。", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(counts)
	}
}
