package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

// Locale negotiates the message language from the lang query parameter or
// Accept-Language, falling back to fallback.
func Locale(fallback string) gin.HandlerFunc {
	fallback = appErrors.NormalizeLanguage(fallback)
	if fallback == "" {
		fallback = appErrors.LangBengali
	}
	return func(c *gin.Context) {
		lang := appErrors.NormalizeLanguage(c.Query("lang"))
		if lang == "" {
			for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
				tag, _, _ := strings.Cut(part, ";")
				if lang = appErrors.NormalizeLanguage(tag); lang != "" {
					break
				}
			}
		}
		if lang == "" {
			lang = fallback
		}
		c.Set(response.LanguageKey, lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}
