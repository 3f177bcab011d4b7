package util

import (
	"baitapvui_backend/internal/i18n"

	"github.com/gin-gonic/gin"
)

const translatorKey = "translator"

func SetTranslator(c *gin.Context, tr *i18n.Translator) {
	c.Set(translatorKey, tr)
}

// GetTranslator 返回请求语言的翻译器，未设置时为英文
func GetTranslator(c *gin.Context) *i18n.Translator {
	if v, ok := c.Get(translatorKey); ok {
		if tr, ok := v.(*i18n.Translator); ok {
			return tr
		}
	}
	return i18n.English
}
