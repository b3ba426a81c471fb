// Package validator 注册自定义参数校验规则
//
// gin的binding基于go-playground/validator，自定义规则需注册到binding.Validator的引擎上：
//
//	if err := validator.Register(); err != nil {
//	    return err
//	}
//
// 注册后即可在binding tag中使用：
//
//	DueDate time.Time `json:"due_date" binding:"required,future"`
package validator

import (
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// TagFuture 时间必须晚于当前时间
const TagFuture = "future"

var (
	registerOnce sync.Once
	registerErr  error

	// now 当前时间，测试可替换
	now = time.Now
)

// Register 把自定义规则注册到gin的校验引擎，可重复调用
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin校验引擎不是go-playground/validator")
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

// RegisterOn 把自定义规则注册到指定的校验器
func RegisterOn(v *validator.Validate) error {
	return v.RegisterValidation(TagFuture, future)
}

// future 支持time.Time和*time.Time，零值视为不合法
func future(fl validator.FieldLevel) bool {
	switch t := fl.Field().Interface().(type) {
	case time.Time:
		return !t.IsZero() && t.After(now())
	case *time.Time:
		return t != nil && t.After(now())
	default:
		return false
	}
}
