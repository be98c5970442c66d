package model

import "sort"

// StaffMember 值班人员
type StaffMember struct {
	Name  string `json:"name"`
	Grade string `json:"grade,omitempty"`

	// 不可值班日期 (YYYY-MM-DD)
	Unavailable map[string]struct{} `json:"-"`
}

// NewStaffMember 创建值班人员
func NewStaffMember(name, grade string, unavailable ...string) StaffMember {
	s := StaffMember{Name: name, Grade: grade}
	if len(unavailable) > 0 {
		s.Unavailable = make(map[string]struct{}, len(unavailable))
		for _, d := range unavailable {
			s.Unavailable[d] = struct{}{}
		}
	}
	return s
}

// IsAvailable 按日期字符串精确匹配检查是否可值班
func (s StaffMember) IsAvailable(date string) bool {
	_, blocked := s.Unavailable[date]
	return !blocked
}

// UnavailableDates 返回排序后的不可值班日期
func (s StaffMember) UnavailableDates() []string {
	dates := make([]string, 0, len(s.Unavailable))
	for d := range s.Unavailable {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// StaffNames 返回人员名单
func StaffNames(staff []StaffMember) []string {
	names := make([]string, len(staff))
	for i, s := range staff {
		names[i] = s.Name
	}
	return names
}

// StaffOfGrade 返回指定等级的人员；非等级模式传 ImplicitGrade 返回全部
func StaffOfGrade(staff []StaffMember, grade string) []StaffMember {
	if grade == ImplicitGrade {
		return staff
	}
	var out []StaffMember
	for _, s := range staff {
		if s.Grade == grade {
			out = append(out, s)
		}
	}
	return out
}
