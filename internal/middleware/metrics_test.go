package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"devenv-keeper/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	total := services.GetTotalRequestCount()
	errs := services.GetTotalErrorCount()

	for _, path := range []string{"/ok", "/bad", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, total+3, services.GetTotalRequestCount())
	assert.Equal(t, errs+2, services.GetTotalErrorCount(), "400 and 404 are errors")
}
