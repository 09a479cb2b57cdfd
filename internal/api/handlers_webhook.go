package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const (
	webhookKeyHeader      = "X-API-Key"
	webhookEventCall      = "call_received"
	webhookEventCallEnded = "call_ended"
	webhookEventMissed    = "call_missed"
)

type webhookCallEvent struct {
	EventType string `json:"event_type"`
	Duration  *int   `json:"duration"`
	CallerID  string `json:"caller_id"`
	APIKey    string `json:"api_key"`
}

// WebhookCall counts an inbound softphone call on today's entry. When a key
// hash is configured the caller must present the matching key.
func (handler *Handler) WebhookCall(c *fiber.Ctx) error {
	event := webhookCallEvent{}
	if err := parseJSONBody(c, &event); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if len(handler.webhookKeyHash) > 0 {
		limiterKey := clientKey(c)
		now := handler.periods.Now()
		if handler.webhookLimiter.blocked(limiterKey, now, webhookFailureLimit, webhookFailureWindow) {
			return apiError(c, fiber.StatusTooManyRequests, "too many failed attempts")
		}
		if !handler.webhookKeyAccepted(c, event.APIKey) {
			handler.webhookLimiter.recordFailure(limiterKey, now, webhookFailureWindow)
			handler.logger.WithField("client", limiterKey).Warn("webhook key rejected")
			return apiError(c, fiber.StatusUnauthorized, "invalid api key")
		}
		handler.webhookLimiter.clear(limiterKey)
	}

	eventType := strings.TrimSpace(event.EventType)
	if eventType == "" {
		eventType = webhookEventCall
	}
	switch eventType {
	case webhookEventCall:
	case webhookEventCallEnded, webhookEventMissed:
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Event ignored",
			"date":    handler.periods.TodayKey(),
		})
	default:
		return apiError(c, fiber.StatusBadRequest, "unknown event_type")
	}

	today := handler.periods.TodayKey()
	entry, err := handler.entries.IncrementCalls(today)
	if err != nil {
		return handler.serviceError(c, err, "log call")
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Call logged",
		"date":        today,
		"total_calls": entry.CallsReceived,
	})
}

func (handler *Handler) WebhookTest(c *fiber.Ctx) error {
	auth := "Disabled - set WEBHOOK_API_KEY_HASH to require a key"
	if len(handler.webhookKeyHash) > 0 {
		auth = "Required - send the key in the " + webhookKeyHeader + " header or the api_key field"
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Webhook endpoint is ready",
		"usage": fiber.Map{
			"endpoint":    "POST /api/webhook/call",
			"description": "Increments today's call count by 1",
			"auth":        auth,
		},
	})
}

func (handler *Handler) webhookKeyAccepted(c *fiber.Ctx, bodyKey string) bool {
	if len(handler.webhookKeyHash) == 0 {
		return true
	}
	key := strings.TrimSpace(c.Get(webhookKeyHeader))
	if key == "" {
		key = strings.TrimSpace(bodyKey)
	}
	if key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(handler.webhookKeyHash, []byte(key)) == nil
}
