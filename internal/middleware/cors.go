package middleware

import (
	"net/http"
	"strings"

	"carrera/internal/config"

	"github.com/gin-gonic/gin"
)

// DevCORS lets a spectator frontend on another origin read the race.
// Loopback origins are accepted in development only; origins listed in
// WS_ALLOWED_ORIGINS are accepted everywhere.
func DevCORS(cfg config.Config) gin.HandlerFunc {
	allowed := map[string]bool{}
	for _, o := range cfg.WSAllowedOrigins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := strings.TrimSpace(c.GetHeader("Origin"))
		if origin == "" {
			c.Next()
			return
		}

		if allowed[origin] || (cfg.IsDev() && isLoopbackOrigin(origin)) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Vary", "Origin")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Port varies for Vite; host may be localhost or 127.0.0.1.
func isLoopbackOrigin(origin string) bool {
	for _, p := range []string{
		"http://localhost:", "http://127.0.0.1:", "http://[::1]:",
		"https://localhost:", "https://127.0.0.1:", "https://[::1]:",
	} {
		if strings.HasPrefix(origin, p) {
			return true
		}
	}
	return false
}
