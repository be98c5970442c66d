package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"

	apperrors "github.com/paiban/oncall/pkg/errors"
)

// RequestValidator 请求校验器，错误信息翻译为中文
type RequestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewRequestValidator 创建请求校验器
func NewRequestValidator() (*RequestValidator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// 错误信息中使用 json 字段名
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	return &RequestValidator{validate: validate, translator: trans}, nil
}

// Struct 校验结构体，失败时返回 CodeValidationFail
func (v *RequestValidator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "请求参数无效")
	}

	ve := &apperrors.ValidationErrors{}
	for _, fe := range validationErrors {
		ve.Add(fe.Field(), fe.Translate(v.translator))
	}
	return ve.ToAppError()
}
