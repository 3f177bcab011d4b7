package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSpanNameUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var names []string
	r := gin.New()
	r.Use(func(c *gin.Context) { names = append(names, SpanName(c)) })
	r.Use(GinMiddleware())
	r.GET("/api/builder/:assignmentId", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/builder/a1", "/api/builder/a2", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, []string{
		"GET /api/builder/:assignmentId",
		"GET /api/builder/:assignmentId",
		"GET unmatched",
	}, names)
}
