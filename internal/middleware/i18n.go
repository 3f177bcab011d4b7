package middleware

import (
	"baitapvui_backend/internal/i18n"
	"baitapvui_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// I18nMiddleware 按 Accept-Language 选择本次请求的语言
func I18nMiddleware(defaultLanguage func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		util.SetTranslator(c, i18n.FromAcceptLanguage(c.GetHeader(util.HeaderAcceptLanguage), defaultLanguage()))
		c.Next()
	}
}
