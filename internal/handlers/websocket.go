package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"sync"

	"carrera/internal/models"
	ws "carrera/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			// Non-browser clients (no Origin) are allowed.
			return true
		}
		if cfgDevAllowAll() {
			return true
		}
		if cfgIsDev() {
			return isLocalhostOrigin(origin) || isAllowedOrigin(origin)
		}
		return isAllowedOrigin(origin)
	},
}

// set by config at startup
var originMu sync.RWMutex
var allowedOrigins = map[string]bool{}
var devMode = false
var devAllowAll = false

func SetWebSocketOriginPolicy(isDev bool, allowAllDev bool, origins []string) {
	originMu.Lock()
	defer originMu.Unlock()
	devMode = isDev
	devAllowAll = allowAllDev
	allowedOrigins = map[string]bool{}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			allowedOrigins[o] = true
		}
	}
}

func cfgIsDev() bool {
	originMu.RLock()
	defer originMu.RUnlock()
	return devMode
}
func cfgDevAllowAll() bool {
	originMu.RLock()
	defer originMu.RUnlock()
	return devMode && devAllowAll
}
func isAllowedOrigin(origin string) bool {
	originMu.RLock()
	defer originMu.RUnlock()
	return allowedOrigins[origin]
}

func isLocalhostOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// WebSocketHandler upgrades a spectator connection. The first message is a
// race:snapshot of the current state (once the race has started), followed
// by every race event as it happens.
func WebSocketHandler(hubProvider func() (*ws.Hub, bool), src RaceSource, raceID string) gin.HandlerFunc {
	room := RaceRoom(raceID)
	return func(c *gin.Context) {
		log := zap.L()

		// Preconditions before attempting the upgrade so we can return HTTP errors normally.
		hub, ok := hubProvider()
		if !ok || hub == nil {
			log.Error("websocket hub unavailable", zap.String("room", room))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "spectating unavailable"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed",
				zap.String("remote", c.ClientIP()),
				zap.String("origin", c.Request.Header.Get("Origin")),
				zap.Error(err),
			)
			return
		}

		client := ws.NewClient(conn, hub, room)
		hub.Register(client, snapshotHello(src))

		go client.WritePump()
		go client.ReadPump()
	}
}

func snapshotHello(src RaceSource) ws.Hello {
	return func() (string, any, bool) {
		snap, err := src.Snapshot()
		if err != nil {
			return "", nil, false
		}
		return models.EventRaceSnapshot, snap, true
	}
}
