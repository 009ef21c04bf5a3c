package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
	"github.com/noah-isme/madrasah-admin-api/pkg/logger"
	"github.com/noah-isme/madrasah-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
	token  string
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	s.token = token
	return s.claims, s.err
}

type envelope struct {
	Data  map[string]interface{} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func claimsFor(role models.UserRole) *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-1", Role: role}
}

func withClaims(claims *models.JWTClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWT(&stubValidator{}), ok)

	for _, header := range []string{"", "Token abc", "Bearer "} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Equal(t, "UNAUTHORIZED", decode(t, rec).Error.Code)
	}
}

func TestJWTAttachesClaimsAndUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validator := &stubValidator{claims: claimsFor(models.RoleTeacher)}
	r := gin.New()
	r.GET("/me", JWT(validator), func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"role": claims.Role, "uid": c.GetString(logger.UserIDKey)}})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer abc.def")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc.def", validator.token)
	env := decode(t, rec)
	assert.Equal(t, "teacher", env.Data["role"])
	assert.Equal(t, "user-1", env.Data["uid"])
}

func TestJWTPropagatesValidatorError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWT(&stubValidator{err: appErrors.ErrUnauthorized}), ok)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer expired")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRolesAndSelf(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", withClaims(claimsFor(models.RoleTeacher)), RequireRoles(AdminRoles...), ok)
	r.GET("/users/:id", withClaims(claimsFor(models.RoleUser)), RBAC(string(models.RoleAdmin), "SELF"), ok)
	r.GET("/anon", RequireRoles(AdminRoles...), ok)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, rec).Error.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/user-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/user-2", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anon", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWritesRequireOnlyGuardsMutations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		role   models.UserRole
		method string
		want   int
	}{
		{models.RoleUser, http.MethodGet, http.StatusOK},
		{models.RoleUser, http.MethodPost, http.StatusForbidden},
		{models.RoleTeacher, http.MethodPost, http.StatusForbidden},
		{models.RoleAccountant, http.MethodDelete, http.StatusOK},
		{models.RoleAdmin, http.MethodPut, http.StatusOK},
	}
	for _, tc := range cases {
		r := gin.New()
		r.Handle(tc.method, "/expenses", withClaims(claimsFor(tc.role)), WritesRequire(FinanceRoles...), ok)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, "/expenses", nil))
		assert.Equal(t, tc.want, rec.Code, "%s %s", tc.role, tc.method)
	}
}

func TestForbiddenMessageFollowsLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Locale("bn"))
	r.POST("/notices", withClaims(claimsFor(models.RoleUser)), WritesRequire(StaffRoles...), ok)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notices", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	r.ServeHTTP(rec, req)
	english := decode(t, rec).Error.Message
	assert.Equal(t, appErrors.Message(appErrors.KindAuthorization, appErrors.LangEnglish), english)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notices", nil))
	assert.Equal(t, appErrors.Message(appErrors.KindAuthorization, appErrors.LangBengali), decode(t, rec).Error.Message)
	assert.NotEqual(t, english, decode(t, rec).Error.Message)
}

func TestLocaleNegotiation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Locale("en"))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, response.Language(c)) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?lang=bn", nil))
	assert.Equal(t, "bn", rec.Body.String())
	assert.Equal(t, "bn", rec.Header().Get("Content-Language"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "en", rec.Body.String())

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "fr;q=1, bn-BD;q=0.8")
	r.ServeHTTP(rec, req)
	assert.Equal(t, "bn", rec.Body.String())
}

type recorderStub struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (r *recorderStub) Record(entry models.ActivityLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func TestActivityRecordsSuccessfulWritesOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := &recorderStub{}
	r := gin.New()
	r.Use(withClaims(claimsFor(models.RoleAccountant)), Activity(rec))
	v1 := r.Group("/api/v1")
	v1.GET("/expenses", ok)
	v1.POST("/expenses", func(c *gin.Context) { c.Status(http.StatusCreated) })
	v1.DELETE("/expenses/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	v1.PUT("/expenses/:id", func(c *gin.Context) { response.Error(c, appErrors.ErrNotFound) })

	for _, call := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/expenses"},
		{http.MethodPost, "/api/v1/expenses"},
		{http.MethodDelete, "/api/v1/expenses/42"},
		{http.MethodPut, "/api/v1/expenses/42"},
	} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(call.method, call.path, nil))
	}

	require.Len(t, rec.entries, 2)
	assert.Equal(t, "create", rec.entries[0].Action)
	assert.Equal(t, "expenses", rec.entries[0].Resource)
	assert.Equal(t, http.StatusCreated, rec.entries[0].Status)
	require.NotNil(t, rec.entries[0].UserID)
	assert.Equal(t, "user-1", *rec.entries[0].UserID)
	assert.Equal(t, "delete", rec.entries[1].Action)
	assert.Equal(t, "/api/v1/expenses/42", rec.entries[1].Path)
}

func TestResourceFor(t *testing.T) {
	assert.Equal(t, "expenses", resourceFor("/api/v1/expenses/batches/:batchId"))
	assert.Equal(t, "auth", resourceFor("/api/v1/auth/sign-in"))
	assert.Equal(t, "root", resourceFor("/"))
}

func TestResponseMetaCarriesCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		response.JSON(c, http.StatusOK, "x", nil, ExtractMeta(c))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	var body struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body.Meta["cache_hit"])
}

func TestResponseMetaOmitsCacheHitForUncachedReads(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(requestid.Middleware(), WithResponseMeta())
	r.GET("/", func(c *gin.Context) {
		response.JSON(c, http.StatusOK, "x", nil, ExtractMeta(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var body struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body.Meta, "cache_hit")
	assert.Equal(t, "req-42", body.Meta["request_id"])
	assert.Contains(t, body.Meta, "processing_time_ms")
}

type recordingObserver struct {
	paths []string
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	r.paths = append(r.paths, method+" "+path+" "+strconv.Itoa(status))
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &recordingObserver{}
	r := gin.New()
	r.Use(Metrics(observer))
	r.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/students/abc", "/students/def", "/nope/123", "/metrics"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []string{
		"GET /students/:id 200",
		"GET /students/:id 200",
		"GET unmatched 404",
	}, observer.paths)
}
