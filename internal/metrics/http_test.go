package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "test_app"))
	router.GET("/v1/records/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	router.POST("/v1/records", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{})
	})

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/records/"+id, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/records", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	output := scrape(t, provider)

	assertBizMetricLine(
		t,
		output,
		`test_app_http_requests_total`,
		`method="GET".*path="/v1/records/:id".*status_code="200"`,
		`3`,
	)
	assertBizMetricLine(
		t,
		output,
		`test_app_http_requests_total`,
		`method="POST".*path="/v1/records".*status_code="201"`,
		`1`,
	)
	assertBizMetricLine(
		t,
		output,
		`test_app_http_requests_total`,
		`path="unknown".*status_code="404"`,
		`1`,
	)
	assert.NotContains(t, output, `path="/v1/records/a"`)
}

func TestSanitizePath(t *testing.T) {
	assert.Equal(t, "/v1/records/:id", sanitizePath("/v1/records/:id"))
	assert.Equal(t, "unknown", sanitizePath(""))
	assert.Equal(t, "/", sanitizePath("/"))
}
