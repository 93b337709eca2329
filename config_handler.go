package main

import (
	"encoding/json"
	"net/http"

	"corphist/config"
)

// 輔助函式：以 JSON 回傳錯誤
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// GetConfigHandler 回傳目前生效的設定（唯讀）。
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := config.GetConfig()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"database": map[string]interface{}{
				"path":        cfg.Database.Path,
				"init_schema": cfg.Database.InitSchema,
			},
			"server": map[string]interface{}{
				"addr":            cfg.Server.Addr,
				"session_ttl_min": cfg.Server.SessionTTLMin,
			},
			"export": map[string]string{"dir": cfg.Export.Dir},
			"loader": map[string]string{"encoding": cfg.Loader.Encoding},
			"log": map[string]string{
				"level":  cfg.Log.Level,
				"format": cfg.Log.Format,
			},
		})
	}
}
