package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator 获取全局的校验器
//
// 字段名优先取 label 标签，其次取 json 标签，用于拼接中文提示。
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			if label := field.Tag.Get("label"); label != "" {
				return label
			}
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("notblank", validateNotBlank)
	})
	return validate
}

// validateNotBlank 字符串去掉空白后不能为空
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidateStruct 校验结构体，返回 ValidationErrors
func ValidateStruct(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	result := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		result = append(result, &ValidationError{
			Field:   jsonFieldName(fe),
			Message: translate(fe),
		})
	}
	return result
}

// jsonFieldName 字段在结构体中的json名称，用于定位表单字段
func jsonFieldName(fe validator.FieldError) string {
	name := fe.StructField()
	if name == "" {
		return fe.Field()
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// translate 把校验错误转换为中文提示
func translate(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s不能为空", label)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s至少%s个字符", label, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s至少%s项", label, fe.Param())
		}
		return fmt.Sprintf("%s不能小于%s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s不能超过%s个字符", label, fe.Param())
		}
		return fmt.Sprintf("%s不能大于%s", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s必须大于%s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s不能小于%s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s必须是以下值之一: %s", label, fe.Param())
	case "email":
		return fmt.Sprintf("%s格式不正确", label)
	case "eqfield":
		return "两次输入的密码不一致"
	case "datetime":
		return fmt.Sprintf("%s日期格式不正确", label)
	default:
		return fmt.Sprintf("%s校验失败(%s)", label, fe.Tag())
	}
}
