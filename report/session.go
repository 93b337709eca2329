package report

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"corphist/model"
)

// Assemble 組出本次查詢的報表集合，順序為 研發、設備、上市櫃。
// 研發與設備兩張一定存在（即使沒有資料）；上市櫃只在有資料時加入。
func Assemble(rd, smart model.ReportSheet, ipo *model.ReportSheet) []model.ReportSheet {
	sheets := []model.ReportSheet{rd, smart}
	if ipo != nil && ipo.Len() > 0 {
		sheets = append(sheets, *ipo)
	}
	return sheets
}

// Session 保存一位操作者最近一次查詢的報表集合。
// 每次查詢以 Replace 整批替換，只有成功匯出後才清空。
type Session struct {
	ID string

	mu       sync.Mutex
	sheets   []model.ReportSheet
	criteria model.FilterCriteria
	touched  time.Time
}

func NewSession() *Session {
	return &Session{ID: uuid.NewString(), touched: time.Now()}
}

// Replace 以新的查詢結果取代舊的集合（不累加）。
func (s *Session) Replace(c model.FilterCriteria, sheets []model.ReportSheet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = c
	s.sheets = append([]model.ReportSheet(nil), sheets...)
	s.touched = time.Now()
}

// Snapshot 回傳目前的條件與報表集合的副本。
func (s *Session) Snapshot() (model.FilterCriteria, []model.ReportSheet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria, append([]model.ReportSheet(nil), s.sheets...)
}

// HasSheets 回報是否有可匯出的報表。
func (s *Session) HasSheets() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sheets) > 0
}

// Clear 清空報表集合。
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets = nil
	s.touched = time.Now()
}

func (s *Session) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// SessionStore 以 session ID 管理 HTTP 操作者的 Session。
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewSessionStore 建立 Session 管理器；ttl 為 0 時不過期。
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session), ttl: ttl}
}

// Get 取得既有 Session，不存在或已過期時回傳 nil。
func (st *SessionStore) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	if !ok {
		return nil
	}
	if st.ttl > 0 && time.Since(sess.lastTouched()) > st.ttl {
		delete(st.sessions, id)
		return nil
	}
	return sess
}

// GetOrCreate 取得既有 Session，沒有時建立新的。
// 建立新 Session 前會先清掉所有已過期的 Session。
func (st *SessionStore) GetOrCreate(id string) *Session {
	if sess := st.Get(id); sess != nil {
		return sess
	}
	sess := NewSession()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sweepLocked(time.Now())
	st.sessions[sess.ID] = sess
	return sess
}

// sweepLocked 刪除閒置超過 ttl 的 Session，呼叫端須持有 st.mu。
func (st *SessionStore) sweepLocked(now time.Time) {
	if st.ttl <= 0 {
		return
	}
	for id, sess := range st.sessions {
		if now.Sub(sess.lastTouched()) > st.ttl {
			delete(st.sessions, id)
		}
	}
}

// Len 回傳目前保存的 Session 數。
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
