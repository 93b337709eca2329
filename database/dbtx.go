package database

// DBTX 為 *sqlx.DB 與 *sqlx.Tx 的共同介面，查詢函式兩者皆可使用。
type DBTX interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}
