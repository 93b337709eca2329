package main

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"corphist/config"
	"corphist/loader"
	"corphist/report"
	"corphist/search"
)

func SetupRoutes(mux *http.ServeMux, dbConn *sqlx.DB, cfg config.Config, log *zap.Logger) *report.SessionStore {
	ttl := time.Duration(cfg.Server.SessionTTLMin) * time.Minute
	store := report.NewSessionStore(ttl)
	svc := search.NewService(dbConn, log.Named("search"))

	mux.HandleFunc("/api/years", methods(search.GetYearsHandler(dbConn, log), http.MethodGet))
	mux.HandleFunc("/api/search", methods(search.SearchHandler(svc, store, log), http.MethodGet, http.MethodPost))
	mux.HandleFunc("/api/export", methods(search.ExportHandler(store, log), http.MethodGet))

	mux.HandleFunc("/api/tables", methods(ListTablesHandler(dbConn, log), http.MethodGet))
	mux.HandleFunc("/api/load", loader.UploadCSVHandler(dbConn, log.Named("loader"), cfg.Loader.Encoding))

	mux.HandleFunc("/api/config", methods(GetConfigHandler(), http.MethodGet))

	return store
}

// methods 只允許指定的 HTTP 方法。
func methods(h http.HandlerFunc, allowed ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, m := range allowed {
			if r.Method == m {
				h(w, r)
				return
			}
		}
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}
