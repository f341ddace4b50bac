package config

import (
	"context"
	"database/sql"
	"net/http"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
)

type dependencyCheck func(ctx context.Context) (ok bool, reason string)

// HealthChecker reports the status of the dependencies the server was started
// with. Dependencies that are not configured are left out of the report.
type HealthChecker struct {
	names  []string
	checks map[string]dependencyCheck
}

func NewHealthChecker(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client) *HealthChecker {
	h := &HealthChecker{checks: make(map[string]dependencyCheck)}

	if db != nil {
		h.add("postgres", func(ctx context.Context) (bool, string) {
			if err := db.PingContext(ctx); err != nil {
				return false, err.Error()
			}
			return true, ""
		})
	}
	if amqpConn != nil {
		h.add("rabbitmq", func(context.Context) (bool, string) {
			if amqpConn.IsClosed() {
				return false, "connection closed"
			}
			return true, ""
		})
	}
	if mqttClient != nil {
		h.add("mqtt", func(context.Context) (bool, string) {
			if !mqttClient.IsConnected() {
				return false, "not connected"
			}
			return true, ""
		})
	}
	return h
}

func (h *HealthChecker) add(name string, check dependencyCheck) {
	h.names = append(h.names, name)
	h.checks[name] = check
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

func (h *HealthChecker) Handle(c *gin.Context) {
	status := http.StatusOK
	deps := gin.H{}

	for _, name := range h.names {
		if ok, reason := h.checks[name](c.Request.Context()); !ok {
			deps[name] = gin.H{"status": "down", "error": reason}
			status = http.StatusServiceUnavailable
		} else {
			deps[name] = gin.H{"status": "up"}
		}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
	})
}
