package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/haierkeys/fast-note-ai-service/pkg/app"
)

// LangWithTranslator picks the validation translator and response language from ?lang= or the lang header
// LangWithTranslator 根据 lang 参数或请求头选择翻译器和响应语言
func LangWithTranslator(v *app.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string

		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		}

		lang = strings.ToLower(strings.ReplaceAll(lang, "-", "_"))
		if strings.HasPrefix(lang, "zh") {
			lang = "zh_cn"
		}

		c.Set(app.TransKey, v.Translator(lang))
		if lang != "" {
			c.Set(app.LangKey, lang)
		}

		c.Next()
	}
}
