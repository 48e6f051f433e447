package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	corsAllowHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}
	corsAllowMethods = []string{http.MethodPost, http.MethodOptions}
)

// CORS answers browser preflights for the edge function. Any origin may call it; the
// bearer token is the only credential.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    corsAllowMethods,
		AllowHeaders:    corsAllowHeaders,
	})
}

// Preflight serves OPTIONS for clients that do not send an Origin header, which the CORS
// middleware lets through untouched.
func Preflight(c *gin.Context) {
	SetCORSHeaders(c)
	c.Status(http.StatusNoContent)
}

func SetCORSHeaders(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", strings.Join(corsAllowHeaders, ", "))
	h.Set("Access-Control-Allow-Methods", strings.Join(corsAllowMethods, ", "))
}
