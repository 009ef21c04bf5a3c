package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/middleware"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

// actorID is the caller's user id, or empty for anonymous requests.
func actorID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func listFilter(c *gin.Context) models.ListFilter {
	var f models.ListFilter
	f.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		f.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		f.PageSize = size
	}
	f.SortBy = c.Query("sort")
	f.SortOrder = c.Query("order")
	f.Normalize()
	return f
}

func boolQuery(c *gin.Context, key string) *bool {
	switch strings.ToLower(c.Query(key)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

func intQuery(c *gin.Context, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, appErrors.Invalid(key, "numeric", "")
	}
	return &v, nil
}

func dateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := dto.ParseDate(raw)
	if err != nil {
		return nil, appErrors.Invalid(key, "date", "")
	}
	return &d, nil
}

// dateRange reads the from/to query pair shared by ledger listings.
func dateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	from, err := dateQuery(c, "from")
	if err != nil {
		return nil, nil, err
	}
	to, err := dateQuery(c, "to")
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// bindJSON decodes the body; field rules are checked by the service.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrapf(appErrors.ErrValidation, err, "invalid payload"))
		return false
	}
	return true
}

func respondCached(c *gin.Context, data interface{}, pagination *models.Pagination, hit bool) {
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, data, pagination, middleware.ExtractMeta(c))
}
