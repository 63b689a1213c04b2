package app

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/pkg/errors"
)

// Validator gin's validator engine plus its translators
// Validator gin 校验引擎及翻译器
type Validator struct {
	Validate *validator.Validate
	Uni      *ut.UniversalTranslator
}

// NewValidator configures gin's binding validator: field names come from json tags
// and en / zh translations are registered.
// NewValidator 配置 gin 校验器：字段名取 json tag，并注册中英文翻译
func NewValidator() (*Validator, error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, errors.New("gin binding validator is not go-playground/validator")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	uni := ut.New(en.New(), en.New(), zh.New())

	enTrans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, enTrans); err != nil {
		return nil, errors.Wrap(err, "register en translations")
	}
	zhTrans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(v, zhTrans); err != nil {
		return nil, errors.Wrap(err, "register zh translations")
	}

	return &Validator{Validate: v, Uni: uni}, nil
}

// Translator falls back to English for unknown locales
func (v *Validator) Translator(locale string) ut.Translator {
	locale = strings.ToLower(strings.ReplaceAll(locale, "-", "_"))
	if strings.HasPrefix(locale, "zh") {
		locale = "zh"
	}
	if trans, found := v.Uni.GetTranslator(locale); found {
		return trans
	}
	trans, _ := v.Uni.GetTranslator("en")
	return trans
}
