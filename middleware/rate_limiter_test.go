package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(remoteAddr string, headers map[string]string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.RemoteAddr = remoteAddr
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c
}

func TestClientIPPrefersProxyHeaders(t *testing.T) {
	c := testContext("10.0.0.1:4321", map[string]string{
		"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
		"X-Real-IP":       "203.0.113.8",
	})
	assert.Equal(t, "203.0.113.7", clientIP(c))

	c = testContext("10.0.0.1:4321", map[string]string{
		"X-Real-IP": "203.0.113.8",
	})
	assert.Equal(t, "203.0.113.8", clientIP(c))
}

func TestClientIPFallsBackToPeerAddress(t *testing.T) {
	c := testContext("192.0.2.4:56789", nil)
	assert.Equal(t, "192.0.2.4", clientIP(c))

	// No port to strip.
	c = testContext("192.0.2.4", nil)
	assert.Equal(t, "192.0.2.4", clientIP(c))
}
