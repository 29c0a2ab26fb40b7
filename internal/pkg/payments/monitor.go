package payments

import (
	"encoding/json"

	"github.com/FelixKnapp/ShopFox/app/models"
	"github.com/FelixKnapp/ShopFox/internal/pkg/env"
	"github.com/FelixKnapp/ShopFox/internal/pkg/mail"
	"github.com/gofiber/fiber/v2/log"
)

// Monitor is the best-effort monitoring/alerting sink. Recording never
// fails the caller; its own errors are logged and swallowed so a broken
// monitoring path can never corrupt webhook processing.
type Monitor struct {
	repo   Repository
	mailer mail.Mailer
}

// NewMonitor creates a monitoring sink.
func NewMonitor(repo Repository, mailer mail.Mailer) *Monitor {
	return &Monitor{repo: repo, mailer: mailer}
}

// Record appends a MonitoringEvent.
func (m *Monitor) Record(eventType, severity, message string, metadata map[string]interface{}) {
	metaJSON := ""
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			metaJSON = string(b)
		}
	}

	event := &models.MonitoringEvent{
		Type:         eventType,
		Severity:     severity,
		Message:      message,
		MetadataJSON: metaJSON,
	}
	if err := m.repo.CreateMonitoringEvent(event); err != nil {
		log.Errorf("[Monitor] failed to record %s/%s: %v", eventType, severity, err)
	}
}

// NotifyCriticalAlert sends an out-of-band alert email for critical
// events. Failure to deliver is swallowed and logged locally.
func (m *Monitor) NotifyCriticalAlert(message string, metadata map[string]interface{}) {
	to := env.GetEnv("ALERT_EMAIL", "")
	if to == "" {
		log.Warnf("[Monitor] ALERT_EMAIL not configured, critical alert only logged: %s", message)
		return
	}

	body := "<p>" + message + "</p>"
	if len(metadata) > 0 {
		if b, err := json.MarshalIndent(metadata, "", "  "); err == nil {
			body += "<pre>" + string(b) + "</pre>"
		}
	}
	if err := m.mailer.Send(to, "[ShopFox] Critical webhook alert", body); err != nil {
		log.Errorf("[Monitor] critical alert email failed: %v", err)
	}
}
