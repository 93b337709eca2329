package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownSegmentGroup 表示組別名稱不屬於四個收案組別之一。
var ErrUnknownSegmentGroup = errors.New("unknown segment group")

// SegmentGroup 為收案組別。零值代表未分類（或未指定）。
type SegmentGroup int

const (
	SegmentUnclassified SegmentGroup = iota
	SegmentEmerging
	SegmentPlatformEconomy
	SegmentDigitalServices
	SegmentTelecom
)

var segmentLabels = map[SegmentGroup]string{
	SegmentEmerging:        "新興跨域組",
	SegmentPlatformEconomy: "平台經濟組",
	SegmentDigitalServices: "數位服務組",
	SegmentTelecom:         "通訊傳播組",
}

var segmentKeys = map[SegmentGroup]string{
	SegmentEmerging:        "Emerging",
	SegmentPlatformEconomy: "PlatformEconomy",
	SegmentDigitalServices: "DigitalServices",
	SegmentTelecom:         "Telecom",
}

// SegmentGroups 回傳選單的顯示順序。
func SegmentGroups() []SegmentGroup {
	return []SegmentGroup{SegmentEmerging, SegmentPlatformEconomy, SegmentDigitalServices, SegmentTelecom}
}

// Label 為資料庫組別欄位中的中文名稱，未分類回傳空字串。
func (g SegmentGroup) Label() string {
	return segmentLabels[g]
}

func (g SegmentGroup) String() string {
	if k, ok := segmentKeys[g]; ok {
		return k
	}
	return "Unclassified"
}

// IsSet 回報是否為四組之一。
func (g SegmentGroup) IsSet() bool {
	_, ok := segmentLabels[g]
	return ok
}

func (g SegmentGroup) MarshalText() ([]byte, error) {
	return []byte(g.Label()), nil
}

// ParseSegmentGroup 接受中文名稱或英文代號，空字串視為未指定。
func ParseSegmentGroup(s string) (SegmentGroup, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SegmentUnclassified, nil
	}
	for _, g := range SegmentGroups() {
		if s == g.Label() || strings.EqualFold(s, g.String()) {
			return g, nil
		}
	}
	return SegmentUnclassified, fmt.Errorf("%w: %q", ErrUnknownSegmentGroup, s)
}

// FilterCriteria 為單次查詢的條件，nil 欄位代表不限制。
type FilterCriteria struct {
	CompanyID       *string      `json:"companyId,omitempty"`
	CompanyName     *string      `json:"companyName,omitempty"`
	ApplicationYear *int         `json:"applicationYear,omitempty"`
	SegmentGroup    SegmentGroup `json:"segmentGroup,omitempty"`
}

// NewFilterCriteria 由表單或 CLI 的輸入字串建立查詢條件。
// 只含空白的輸入視為未填。
func NewFilterCriteria(companyID, companyName, year, group string) (FilterCriteria, error) {
	var c FilterCriteria
	if v := strings.TrimSpace(companyID); v != "" {
		c.CompanyID = &v
	}
	if v := strings.TrimSpace(companyName); v != "" {
		c.CompanyName = &v
	}
	if v := strings.TrimSpace(year); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return FilterCriteria{}, fmt.Errorf("invalid application year %q: %w", v, err)
		}
		c.ApplicationYear = &y
	}
	g, err := ParseSegmentGroup(group)
	if err != nil {
		return FilterCriteria{}, err
	}
	c.SegmentGroup = g
	return c, nil
}

// NameFilter 回傳公司名稱的部分比對條件。
func (c FilterCriteria) NameFilter() (string, bool) {
	if c.CompanyName == nil || *c.CompanyName == "" {
		return "", false
	}
	return *c.CompanyName, true
}

// IDFilter 回傳統編的完全比對條件。有填公司名稱時統編不生效。
func (c FilterCriteria) IDFilter() (string, bool) {
	if _, ok := c.NameFilter(); ok {
		return "", false
	}
	if c.CompanyID == nil || *c.CompanyID == "" {
		return "", false
	}
	return *c.CompanyID, true
}

// Year 回傳申請年度條件。
func (c FilterCriteria) Year() (int, bool) {
	if c.ApplicationYear == nil {
		return 0, false
	}
	return *c.ApplicationYear, true
}

func (c FilterCriteria) IsEmpty() bool {
	_, name := c.NameFilter()
	_, id := c.IDFilter()
	_, year := c.Year()
	return !name && !id && !year && !c.SegmentGroup.IsSet()
}
