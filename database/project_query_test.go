package database

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corphist/loader"
	"corphist/model"
)

// newTestDB 建立套用資料表定義的記憶體資料庫。
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, loader.InitDatabase(db, nil))
	return db
}

func seed(t *testing.T, db *sqlx.DB) {
	t.Helper()
	stmts := []string{
		`INSERT INTO rd_project VALUES (2023, '12345678', '甲公司', 'AI平台', '新興跨域組', '中小企', '資安產業')`,
		`INSERT INTO rd_project VALUES (2022, '12345678', '甲公司', '舊計畫', ' 平台經濟組 ', '產創', '資訊服務業')`,
		`INSERT INTO rd_project VALUES (2023, '87654321', '乙公司', '雲端', '數位服務組', '產創', '資訊服務業')`,
		`INSERT INTO rd_item VALUES (2023, '12345678', 'AI平台', 100000, '通過')`,
		`INSERT INTO rd_item VALUES (2023, '12345678', 'AI平台', 50000, '不通過')`,

		`INSERT INTO smart_project VALUES (2023, '12345678', '甲公司', '設備升級', '資訊服務業')`,
		`INSERT INTO smart_project VALUES (2023, '87654321', '乙公司', '機房', '電信產業')`,
		`INSERT INTO smart_project VALUES (2021, '11112222', '丙公司', '產線', '食品製造業')`,
		`INSERT INTO smart_item VALUES (2023, '12345678', '設備升級', '1', '伺服器', '硬體', 300000, 150000, 200000, '初審通過', '複審項目核定')`,

		`INSERT INTO ipo_info VALUES ('12345678', '甲公司', 500000000, '2023-05-02', '2022-11-20', NULL, '上櫃', '數位服務組', '國內', '某證券', '輔導中', '通過', NULL)`,
		`INSERT INTO ipo_info VALUES ('87654321', '乙公司', NULL, '2021-01-10', NULL, NULL, '上市', '通訊傳播組', '國外', NULL, NULL, NULL, NULL)`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
}

func TestSearchRDProjects_SQLite(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	t.Run("no filter returns full left join", func(t *testing.T) {
		rows, err := SearchRDProjects(db, model.FilterCriteria{})
		require.NoError(t, err)
		// AI平台 兩個項目 + 舊計畫、雲端 各一列（無項目）
		assert.Len(t, rows, 4)
	})

	t.Run("id and year", func(t *testing.T) {
		rows, err := SearchRDProjects(db, criteria(t, "12345678", "", "2023", ""))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, r := range rows {
			assert.Equal(t, "12345678", r.CompanyID.String())
			assert.Equal(t, "2023", r.ApplyYear.String())
		}
		assert.Equal(t, int64(100000), rows[0].ApplyAmount.Cell())
		assert.Equal(t, "通過", rows[0].Approved.Cell())
	})

	t.Run("project without items keeps null amount", func(t *testing.T) {
		rows, err := SearchRDProjects(db, criteria(t, "87654321", "", "", ""))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].ApplyAmount.Cell())
		assert.Nil(t, rows[0].Approved.Cell())
	})

	t.Run("group matched after trim", func(t *testing.T) {
		rows, err := SearchRDProjects(db, criteria(t, "", "", "", "平台經濟組"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "舊計畫", rows[0].ProjectName.String())
	})

	t.Run("name partial match wins over id", func(t *testing.T) {
		rows, err := SearchRDProjects(db, criteria(t, "12345678", "乙", "", ""))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "87654321", rows[0].CompanyID.String())
	})

	t.Run("no match", func(t *testing.T) {
		rows, err := SearchRDProjects(db, criteria(t, "00000000", "", "", ""))
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.NotNil(t, rows)
	})
}

func TestSearchSmartProjects_SQLite(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	rows, err := SearchSmartProjects(db, criteria(t, "", "", "2023", "通訊傳播組"))
	require.NoError(t, err)
	// 組別不在 SQL 中篩選
	assert.Len(t, rows, 2)

	rows, err = SearchSmartProjects(db, criteria(t, "12345678", "", "", ""))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(200000), rows[0].ApplyAmount.Cell())
	assert.Equal(t, "複審項目核定", rows[0].FinalReview.Cell())
	assert.Equal(t, model.SegmentUnclassified, rows[0].MappedGroup)
}

func TestSearchIPOCases_SQLite(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	rows, err := SearchIPOCases(db, criteria(t, "12345678", "", "2023", ""))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2023-05-02", rows[0].ApplyDate.String())
	assert.False(t, rows[0].MeetingDate.Valid)

	rows, err = SearchIPOCases(db, criteria(t, "", "", "", "通訊傳播組"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "乙公司", rows[0].CompanyName.String())

	rows, err = SearchIPOCases(db, criteria(t, "", "", "2019", ""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSearchIPOCases_YearExcludesMissingApplyDate(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)
	_, err := db.Exec(`INSERT INTO ipo_info (company_id, company_name, apply_date, status) VALUES ('33334444', '丁公司', NULL, '輔導中')`)
	require.NoError(t, err)

	rows, err := SearchIPOCases(db, criteria(t, "33334444", "", "", ""))
	require.NoError(t, err)
	require.Len(t, rows, 1, "未選年度時照常列出")

	rows, err = SearchIPOCases(db, criteria(t, "33334444", "", "2023", ""))
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = SearchIPOCases(db, criteria(t, "", "", "2023", ""))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "12345678", rows[0].CompanyID.String())

	rows, err = SearchIPOCases(db, criteria(t, "12345678", "丁", "", ""))
	require.NoError(t, err)
	require.Len(t, rows, 1, "公司名稱優先於統編")
	assert.Equal(t, "33334444", rows[0].CompanyID.String())
}

func TestGetApplyYears_SQLite(t *testing.T) {
	db := newTestDB(t)

	years, err := GetApplyYears(db)
	require.NoError(t, err)
	assert.Empty(t, years)

	seed(t, db)
	years, err = GetApplyYears(db)
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2022, 2021}, years)
}

func TestSearchRDProjects_Mock(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlite3")

	c := criteria(t, "12345678", "", "2023", "")
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE 1=1 AND a.company_id = ? AND a.apply_year = ?`)).
		WithArgs("12345678", 2023).
		WillReturnRows(sqlmock.NewRows([]string{
			"apply_year", "company_id", "company_name", "project_name", "group",
			"type_innovation_sme", "industry_category", "apply_amount", "approved",
		}).AddRow(int64(2023), "12345678", "甲公司", "AI平台", "新興跨域組", "中小企", "資安產業", int64(100000), "通過"))

	rows, err := SearchRDProjects(db, c)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "新興跨域組", rows[0].Group.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchIPOCases_MockError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "sqlite3")

	mock.ExpectQuery("FROM ipo_info").WillReturnError(errors.New("no such table: ipo_info"))

	rows, err := SearchIPOCases(db, model.FilterCriteria{})
	assert.Nil(t, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to search ipo cases")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountRows_SQLite(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	counts, err := CountRows(db, []string{"rd_project", "ipo_info"})
	require.NoError(t, err)
	assert.Equal(t, []TableCount{{Table: "rd_project", Rows: 3}, {Table: "ipo_info", Rows: 2}}, counts)
}
