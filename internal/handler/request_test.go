package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
)

func intPtr(n int) *int { return &n }

var testDefaults = Defaults{Trials: 100, MaxTrials: 1000}

func TestToConfig_LegacyForm(t *testing.T) {
	req := &GenerateRequest{
		DoctorNames:    "A, B,C,",
		StartDate:      "2024-01-01",
		EndDate:        "2024-01-07",
		SameNumDoctors: "Y",
		NumDoctors:     intPtr(1),
		HolidayDays:    "2024-01-03, 2024-01-05",
		Find:           10,
	}

	cfg, err := req.ToConfig(testDefaults)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, model.StaffNames(cfg.Staff))
	assert.True(t, cfg.Staffing.IsUniform())
	assert.Equal(t, 1, cfg.Staffing.Uniform)
	assert.Len(t, cfg.Holidays, 2)
	assert.Equal(t, 10, cfg.Trials)
	assert.Nil(t, cfg.Seed)
	assert.Equal(t, model.ModeSimple, cfg.Mode())
}

func TestToConfig_PerNight(t *testing.T) {
	req := &GenerateRequest{
		Staff:              []string{"A", "B"},
		StartDate:          "2024-01-01",
		EndDate:            "2024-01-02",
		SameNumDoctors:     "N",
		NumDoctorsPerNight: map[string]int{"2024-01-01": 1, " 2024-01-02": 2},
	}

	cfg, err := req.ToConfig(testDefaults)
	require.NoError(t, err)
	assert.False(t, cfg.Staffing.IsUniform())
	assert.Equal(t, map[string]int{"2024-01-01": 1, "2024-01-02": 2}, cfg.Staffing.PerDay)
	assert.Equal(t, testDefaults.Trials, cfg.Trials)
}

func TestToConfig_InferStaffing(t *testing.T) {
	req := &GenerateRequest{
		Staff:              []string{"A"},
		StartDate:          "2024-01-01",
		EndDate:            "2024-01-01",
		NumDoctorsPerNight: map[string]int{"2024-01-01": 1},
	}
	cfg, err := req.ToConfig(testDefaults)
	require.NoError(t, err)
	assert.False(t, cfg.Staffing.IsUniform())
}

func TestToConfig_Graded(t *testing.T) {
	seed := uint64(42)
	req := &GenerateRequest{
		Staff:             []string{"j1", "j2", "s1"},
		StartDate:         "2024-01-01",
		EndDate:           "2024-01-31",
		NumDoctors:        intPtr(2),
		Holidays:          []string{"RRULE:FREQ=WEEKLY;BYDAY=WE"},
		Grades:            []string{"junior", "senior"},
		StaffGrades:       map[string]string{"j1": "junior", "j2": "junior", "s1": "senior"},
		ShiftRequirements: map[string][]string{"2024-01-05": {"senior", " junior"}},
		Unavailable:       map[string][]string{"s1": {"2024-01-10"}},
		Seed:              &seed,
	}

	cfg, err := req.ToConfig(testDefaults)
	require.NoError(t, err)
	assert.Equal(t, model.ModeGraded, cfg.Mode())
	assert.Equal(t, "senior", cfg.Staff[2].Grade)
	assert.False(t, cfg.Staff[2].IsAvailable("2024-01-10"))
	assert.Equal(t, []string{"senior", "junior"}, cfg.Requirements["2024-01-05"])
	// 2024年1月共有5个周三
	assert.Len(t, cfg.Holidays, 5)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(42), *cfg.Seed)
}

func TestToConfig_DefaultSeed(t *testing.T) {
	req := &GenerateRequest{Staff: []string{"A"}, StartDate: "2024-01-01", EndDate: "2024-01-01", NumDoctors: intPtr(1)}
	cfg, err := req.ToConfig(Defaults{Trials: 5, Seed: 9})
	require.NoError(t, err)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(9), *cfg.Seed)
}

func TestToConfig_Errors(t *testing.T) {
	base := func() *GenerateRequest {
		return &GenerateRequest{
			Staff:      []string{"A", "B"},
			StartDate:  "2024-01-01",
			EndDate:    "2024-01-07",
			NumDoctors: intPtr(1),
		}
	}

	tests := []struct {
		name  string
		edit  func(r *GenerateRequest)
		field string
	}{
		{"Y缺少人数", func(r *GenerateRequest) { r.SameNumDoctors = "Y"; r.NumDoctors = nil }, "num_doctors"},
		{"N缺少每日人数", func(r *GenerateRequest) { r.SameNumDoctors = "N" }, "num_doctors_per_night"},
		{"尝试次数超限", func(r *GenerateRequest) { r.Find = 5000 }, "find"},
		{"未知人员等级", func(r *GenerateRequest) { r.StaffGrades = map[string]string{"Z": "senior"} }, "staff_grades"},
		{"未知人员休假", func(r *GenerateRequest) { r.Unavailable = map[string][]string{"Z": {"2024-01-01"}} }, "unavailable"},
		{"休假日期无效", func(r *GenerateRequest) { r.Unavailable = map[string][]string{"A": {"01/02/2024"}} }, "unavailable"},
		{"需求日期无效", func(r *GenerateRequest) { r.ShiftRequirements = map[string][]string{"bad": {"x"}} }, "shift_requirements"},
		{"节假日无效", func(r *GenerateRequest) { r.HolidayDays = "2024-13-01" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.edit(req)
			_, err := req.ToConfig(testDefaults)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput), err.Error())
			if tt.field != "" {
				assert.Contains(t, err.Error(), tt.field)
			}
		})
	}
}

func TestRequestValidator(t *testing.T) {
	v, err := NewRequestValidator()
	require.NoError(t, err)

	ok := &GenerateRequest{Staff: []string{"A"}, StartDate: "2024-01-01", EndDate: "2024-01-02"}
	assert.NoError(t, v.Struct(ok))

	bad := &GenerateRequest{
		Staff:              []string{"A", ""},
		EndDate:            "2024/01/02",
		SameNumDoctors:     "X",
		NumDoctorsPerNight: map[string]int{"2024-01-01": -1},
		Grades:             []string{"a", "a"},
	}
	err = v.Struct(bad)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFail))

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Contains(t, appErr.Fields, "start_date")
	assert.Contains(t, appErr.Fields, "end_date")
	assert.Contains(t, appErr.Fields, "same_num_doctors")
	assert.Contains(t, appErr.Fields, "grades")
	assert.NotEmpty(t, appErr.Details)
}
