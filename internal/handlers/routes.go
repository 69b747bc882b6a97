package handlers

import (
	"net/http"

	"carrera/internal/models"
	ws "carrera/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// RaceSource exposes the latest state of the race being run.
type RaceSource interface {
	Snapshot() (models.RaceSnapshot, error)
}

// RegisterRaceRoutes wires the read-only spectator surface.
func RegisterRaceRoutes(r gin.IRouter, src RaceSource, hubs *ws.HubRef, raceID string) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/api/race", GetRaceHandler(src))
	r.GET("/ws", WebSocketHandler(hubs.Get, src, raceID))
}

func GetRaceHandler(src RaceSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := src.Snapshot()
		if err != nil {
			writeAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}
