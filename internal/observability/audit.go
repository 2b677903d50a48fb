package observability

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const auditEventVersion = 1

// AuditInput carries the caller-supplied half of an audit event. BuildAuditEvent
// fills in request-derived fields such as actor IP, request id and timestamp.
type AuditInput struct {
	EventName  string
	Actor      string
	TargetType string
	TargetID   string
	Action     string
	Outcome    string
	Reason     string
}

type AuditEvent struct {
	EventVersion int    `json:"event_version"`
	EventName    string `json:"event_name"`
	Actor        string `json:"actor"`
	ActorIP      string `json:"actor_ip"`
	TargetType   string `json:"target_type"`
	TargetID     string `json:"target_id"`
	Action       string `json:"action"`
	Outcome      string `json:"outcome"`
	Reason       string `json:"reason"`
	RequestID    string `json:"request_id"`
	TS           string `json:"ts"`
}

func (e AuditEvent) Validate() error {
	if strings.TrimSpace(e.EventName) == "" {
		return errors.New("audit event missing event_name")
	}
	if e.EventVersion != auditEventVersion {
		return errors.New("audit event has unsupported event_version")
	}
	if _, err := time.Parse(time.RFC3339, e.TS); err != nil {
		return errors.New("audit event ts is not RFC3339")
	}
	return nil
}

func BuildAuditEvent(r *http.Request, input AuditInput) AuditEvent {
	ip := auditClientIP(r)
	actor := input.Actor
	if actor == "" {
		actor = "ip:" + ip
	}
	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = chimiddleware.GetReqID(r.Context())
	}
	return AuditEvent{
		EventVersion: auditEventVersion,
		EventName:    input.EventName,
		Actor:        actor,
		ActorIP:      ip,
		TargetType:   input.TargetType,
		TargetID:     input.TargetID,
		Action:       input.Action,
		Outcome:      input.Outcome,
		Reason:       input.Reason,
		RequestID:    requestID,
		TS:           time.Now().UTC().Format(time.RFC3339),
	}
}

// EmitAudit logs a structured audit event for the request. Extra attrs are
// appended after the event fields so callers can attach entity context.
func EmitAudit(r *http.Request, input AuditInput, attrs ...any) {
	ev := BuildAuditEvent(r, input)
	if err := ev.Validate(); err != nil {
		slog.ErrorContext(r.Context(), "audit.event_invalid", "error", err, "event_name", input.EventName)
		return
	}
	base := []any{
		"event_version", ev.EventVersion,
		"event_name", ev.EventName,
		"actor", ev.Actor,
		"actor_ip", ev.ActorIP,
		"target_type", ev.TargetType,
		"target_id", ev.TargetID,
		"action", ev.Action,
		"outcome", ev.Outcome,
		"reason", ev.Reason,
		"request_id", ev.RequestID,
		"ts", ev.TS,
		"method", r.Method,
		"path", r.URL.Path,
	}
	base = append(base, attrs...)
	slog.InfoContext(r.Context(), "audit", base...)
}

func auditClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
