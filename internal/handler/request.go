package handler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paiban/oncall/pkg/calendar"
	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
)

// GenerateRequest 值班表生成请求
// 同时兼容旧表单字段：doctor_names 逗号分隔、same_num_doctors 取 Y/N、holiday_days 逗号分隔
type GenerateRequest struct {
	Staff       []string `json:"staff,omitempty" yaml:"staff" validate:"omitempty,dive,required"`
	DoctorNames string   `json:"doctor_names,omitempty" yaml:"doctor_names"`

	StartDate string `json:"start_date" yaml:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" yaml:"end_date" validate:"required,datetime=2006-01-02"`

	SameNumDoctors     string         `json:"same_num_doctors,omitempty" yaml:"same_num_doctors" validate:"omitempty,oneof=Y N y n"`
	NumDoctors         *int           `json:"num_doctors,omitempty" yaml:"num_doctors" validate:"omitempty,min=0"`
	NumDoctorsPerNight map[string]int `json:"num_doctors_per_night,omitempty" yaml:"num_doctors_per_night" validate:"omitempty,dive,keys,datetime=2006-01-02,endkeys,min=0"`

	HolidayDays string   `json:"holiday_days,omitempty" yaml:"holiday_days"`
	Holidays    []string `json:"holidays,omitempty" yaml:"holidays"` // 日期或 RRULE

	Find int `json:"find,omitempty" yaml:"find" validate:"omitempty,min=1"`

	// 等级模式
	Grades            []string            `json:"grades,omitempty" yaml:"grades" validate:"omitempty,unique,dive,required"`
	StaffGrades       map[string]string   `json:"staff_grades,omitempty" yaml:"staff_grades"`
	ShiftRequirements map[string][]string `json:"shift_requirements,omitempty" yaml:"shift_requirements"`

	// 人员 -> 不可值班日期
	Unavailable map[string][]string `json:"unavailable,omitempty" yaml:"unavailable"`

	Seed *uint64 `json:"seed,omitempty" yaml:"seed"`
}

// Defaults 请求未指定时使用的默认值
type Defaults struct {
	Trials    int
	MaxTrials int
	Workers   int
	Seed      uint64 // 0 表示不固定
}

// StaffNames 返回人员名单，staff 优先于 doctor_names
func (req *GenerateRequest) StaffNames() []string {
	if len(req.Staff) > 0 {
		names := make([]string, len(req.Staff))
		for i, n := range req.Staff {
			names[i] = strings.TrimSpace(n)
		}
		return names
	}
	return calendar.SplitList(req.DoctorNames)
}

// ToConfig 将请求转换为排班配置
func (req *GenerateRequest) ToConfig(d Defaults) (*model.Config, error) {
	start, err := model.ParseDate(req.StartDate)
	if err != nil {
		return nil, apperrors.InvalidInput("start_date", "日期格式无效，应为YYYY-MM-DD")
	}
	end, err := model.ParseDate(req.EndDate)
	if err != nil {
		return nil, apperrors.InvalidInput("end_date", "日期格式无效，应为YYYY-MM-DD")
	}

	cfg := &model.Config{
		StartDate: start,
		EndDate:   end,
		Trials:    req.Find,
		Workers:   d.Workers,
	}
	if cfg.Trials == 0 {
		cfg.Trials = d.Trials
	}
	if d.MaxTrials > 0 && cfg.Trials > d.MaxTrials {
		return nil, apperrors.InvalidInput("find", fmt.Sprintf("尝试次数不能超过 %d", d.MaxTrials))
	}

	switch {
	case req.Seed != nil:
		seed := *req.Seed
		cfg.Seed = &seed
	case d.Seed != 0:
		seed := d.Seed
		cfg.Seed = &seed
	}

	if cfg.Staffing, err = req.staffing(); err != nil {
		return nil, err
	}

	entries := append(calendar.SplitList(req.HolidayDays), req.Holidays...)
	if cfg.Holidays, err = calendar.ParseHolidays(entries, start, end); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, "节假日格式无效")
	}

	cfg.Grades = req.Grades
	if cfg.Requirements, err = req.requirements(); err != nil {
		return nil, err
	}
	if cfg.Staff, err = req.staff(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// staffing 解析每日人数
func (req *GenerateRequest) staffing() (model.Staffing, error) {
	same := strings.ToUpper(req.SameNumDoctors)
	if same == "" {
		// 未指定时按提供的字段推断
		same = "Y"
		if req.NumDoctors == nil && req.NumDoctorsPerNight != nil {
			same = "N"
		}
	}

	if same == "Y" {
		if req.NumDoctors == nil {
			return model.Staffing{}, apperrors.InvalidInput("num_doctors", "same_num_doctors 为 Y 时必须提供")
		}
		return model.UniformStaffing(*req.NumDoctors), nil
	}

	if req.NumDoctorsPerNight == nil {
		return model.Staffing{}, apperrors.InvalidInput("num_doctors_per_night", "same_num_doctors 为 N 时必须提供")
	}
	perDay := make(map[string]int, len(req.NumDoctorsPerNight))
	for date, n := range req.NumDoctorsPerNight {
		key, err := normalizeDate(date)
		if err != nil {
			return model.Staffing{}, apperrors.InvalidInput("num_doctors_per_night", err.Error())
		}
		perDay[key] = n
	}
	return model.PerDayStaffing(perDay), nil
}

func (req *GenerateRequest) requirements() (model.ShiftRequirements, error) {
	if len(req.ShiftRequirements) == 0 {
		return nil, nil
	}
	out := make(model.ShiftRequirements, len(req.ShiftRequirements))
	for date, labels := range req.ShiftRequirements {
		key, err := normalizeDate(date)
		if err != nil {
			return nil, apperrors.InvalidInput("shift_requirements", err.Error())
		}
		trimmed := make([]string, len(labels))
		for i, l := range labels {
			trimmed[i] = strings.TrimSpace(l)
		}
		out[key] = trimmed
	}
	return out, nil
}

func (req *GenerateRequest) staff() ([]model.StaffMember, error) {
	names := req.StaffNames()
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}

	// 引用了名单之外的人员视为输入错误
	for _, field := range []struct {
		name string
		keys []string
	}{
		{"staff_grades", mapKeys(req.StaffGrades)},
		{"unavailable", mapKeys(req.Unavailable)},
	} {
		for _, k := range field.keys {
			if _, ok := known[k]; !ok {
				return nil, apperrors.InvalidInput(field.name, fmt.Sprintf("人员 '%s' 不在值班名单中", k))
			}
		}
	}

	staff := make([]model.StaffMember, 0, len(names))
	for _, name := range names {
		var blocked []string
		for _, date := range req.Unavailable[name] {
			key, err := normalizeDate(date)
			if err != nil {
				return nil, apperrors.InvalidInput("unavailable", err.Error())
			}
			blocked = append(blocked, key)
		}
		staff = append(staff, model.NewStaffMember(name, strings.TrimSpace(req.StaffGrades[name]), blocked...))
	}
	return staff, nil
}

func normalizeDate(s string) (string, error) {
	t, err := model.ParseDate(s)
	if err != nil {
		return "", fmt.Errorf("日期 '%s' 格式无效", s)
	}
	return model.FormatDate(t), nil
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
