package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kashvi-silver/backend-kashvi/internal/common"
	"github.com/kashvi-silver/backend-kashvi/internal/events"
)

// EmailNotifier sends transactional emails for selected topics.
type EmailNotifier struct {
	Mail    common.EmailSender
	Enabled bool
	From    string
}

// Notify implements events.Notifier. Events without a recipient email in
// their payload are skipped silently.
func (n EmailNotifier) Notify(_ context.Context, event events.Event) error {
	if !n.Enabled || n.Mail == nil {
		return nil
	}
	payload := map[string]any{}
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("email notify: decode payload: %w", err)
		}
	}
	to := extractRecipient(payload)
	if to == "" {
		return nil
	}
	subject := subjectFor(event.Topic, payload)
	body := bodyFor(event.Topic, payload, event.OccurredAt)
	return n.Mail.Send(to, subject, body)
}

func extractRecipient(payload map[string]any) string {
	for _, key := range []string{"email", "customerEmail"} {
		if s, ok := payload[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func subjectFor(topic string, payload map[string]any) string {
	switch topic {
	case events.TopicOrderCreated:
		if num, ok := payload["orderNumber"].(string); ok && num != "" {
			return fmt.Sprintf("Order %s confirmed", num)
		}
		return "Order confirmed"
	case events.TopicOrderStatusChanged:
		return "Order update"
	case events.TopicOrderCancelled:
		return "Order cancelled"
	default:
		return fmt.Sprintf("Notification: %s", topic)
	}
}

func bodyFor(topic string, payload map[string]any, occurred time.Time) string {
	summary := fmt.Sprintf("Event %s at %s.", topic, occurred.Format(time.RFC3339))
	if num, ok := payload["orderNumber"].(string); ok && num != "" {
		summary += fmt.Sprintf("\nOrder number: %s", num)
	}
	if status, ok := payload["status"].(string); ok && status != "" {
		summary += fmt.Sprintf("\nStatus: %s", status)
	}
	if total, ok := payload["total"].(float64); ok && total > 0 {
		summary += fmt.Sprintf("\nTotal: ₹%d", int64(total))
	}
	return summary
}
