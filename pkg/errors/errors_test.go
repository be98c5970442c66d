package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeInvalidTimeRange, http.StatusBadRequest},
		{CodeStaffingMismatch, http.StatusBadRequest},
		{CodeUnknownGrade, http.StatusBadRequest},
		{CodeValidationFail, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeNoFeasibleSolution, http.StatusUnprocessableEntity},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeDatabaseError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := New(tt.code, "x").HTTPStatus; got != tt.want {
			t.Errorf("%s: HTTPStatus = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("外层: %w", NoFeasibleSolution("没有结果"))

	if !errors.Is(err, ErrNoFeasibleSolution) {
		t.Error("errors.Is 应按错误码匹配预定义错误")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("不同错误码不应匹配")
	}
	if !Is(err, CodeNoFeasibleSolution) {
		t.Error("Is 应识别包装后的错误码")
	}
	if GetHTTPStatus(err) != http.StatusUnprocessableEntity {
		t.Errorf("GetHTTPStatus = %d", GetHTTPStatus(err))
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("普通错误应返回 CodeUnknown")
	}
}

func TestWrap(t *testing.T) {
	err := Wrap(context.DeadlineExceeded, CodeTimeout, "超时")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("Wrap 应保留原始错误")
	}
	if err.Error() != "[TIMEOUT] 超时: context deadline exceeded" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	ve := &ValidationErrors{}
	if ve.HasErrors() {
		t.Fatal("空集合不应有错误")
	}
	ve.Add("find", "必须大于 0")
	ve.Add("staff", "不能为空")

	err := ve.ToAppError()
	if err.Code != CodeValidationFail {
		t.Errorf("Code = %s", err.Code)
	}
	if err.Details != "find: 必须大于 0" {
		t.Errorf("Details = %q", err.Details)
	}
	if len(err.Fields) != 2 {
		t.Errorf("Fields = %v", err.Fields)
	}
}
