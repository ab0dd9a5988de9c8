package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedulifyx-api/internal/models"
	"github.com/noah-isme/schedulifyx-api/internal/service"
	appErrors "github.com/noah-isme/schedulifyx-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
	err    error
	seen   string
}

func (v *validatorStub) ValidateToken(ctx context.Context, token string) (*models.JWTClaims, error) {
	v.seen = token
	return v.claims, v.err
}

type auditWriterStub struct {
	logs []*models.AuditLog
}

func (a *auditWriterStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func adminContext(header string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/protected", nil)
	if header != "" {
		c.Request.Header.Set("Authorization", header)
	}
	return c
}

func echoUser(c *gin.Context) error {
	c.String(http.StatusOK, CurrentClaims(c).UserID)
	return nil
}

func TestAdminOnlyRejectsMissingAndMalformedHeaders(t *testing.T) {
	v := &validatorStub{claims: &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}}

	for _, header := range []string{"", "Token abc", "Bearer "} {
		err := AdminOnly(v, echoUser)(adminContext(header))
		assert.ErrorIs(t, err, appErrors.ErrUnauthorized, "header %q", header)
	}
	assert.Empty(t, v.seen)
}

func TestAdminOnlyPassesClaimsDownstream(t *testing.T) {
	v := &validatorStub{claims: &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}}
	c := adminContext("Bearer token-123")

	require.NoError(t, AdminOnly(v, echoUser)(c))
	assert.Equal(t, "admin-1", CurrentClaims(c).UserID)
	assert.Equal(t, "token-123", c.GetString(ContextTokenKey))
	assert.Equal(t, "token-123", v.seen)
}

func TestAdminOnlyReturnsValidatorErrorUnchanged(t *testing.T) {
	cases := map[string]error{
		"logged out":   appErrors.Clone(appErrors.ErrUnauthorized, "token has been logged out"),
		"lookup fails": appErrors.Wrap(errors.New("redis down"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check token"),
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			called := false
			err := AdminOnly(&validatorStub{err: want}, func(c *gin.Context) error {
				called = true
				return nil
			})(adminContext("Bearer t"))
			assert.Same(t, want, err)
			assert.False(t, called)
		})
	}
}

func TestAdminOnlyForbidsOtherRoles(t *testing.T) {
	v := &validatorStub{claims: &models.JWTClaims{UserID: "u-1", Role: models.UserRole("VIEWER")}}
	err := AdminOnly(v, echoUser)(adminContext("Bearer t"))
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestRequireAdminAcceptsBothAdminRoles(t *testing.T) {
	assert.ErrorIs(t, RequireAdmin(nil), appErrors.ErrUnauthorized)
	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleSuperAdmin} {
		assert.NoError(t, RequireAdmin(&models.JWTClaims{UserID: "u1", Role: role}), role)
	}
}

func TestAuditRecordsOnlySuccessfulRequests(t *testing.T) {
	writer := &auditWriterStub{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "admin-1"})
		c.Next()
	})
	r.POST("/ok", Audit(writer, nil, models.AuditActionSubjectCreate, "subjects"), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	r.POST("/fail", Audit(writer, nil, models.AuditActionRoomCreate, "rooms"), func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusConflict)
	})

	for _, path := range []string{"/ok", "/fail"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	}

	require.Len(t, writer.logs, 1)
	assert.Equal(t, models.AuditActionSubjectCreate, writer.logs[0].Action)
	require.NotNil(t, writer.logs[0].UserID)
	assert.Equal(t, "admin-1", *writer.logs[0].UserID)
}

func TestResponseMetaCollectsCacheHit(t *testing.T) {
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/meta", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meta", nil))

	require.NotNil(t, meta)
	assert.Equal(t, true, meta[cacheHitKey])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestMetricsLabelsRoutesAndSkipsScrapes(t *testing.T) {
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/metrics"))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/items/1", "/items/2", "/metrics", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "path" {
					counts[label.GetValue()] += metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"/items/:id": 2, unmatchedRoute: 1}, counts)
}
