// Package reminders serves the license-expiry reminder webhooks. Every route sends one
// single-placeholder template and always answers 200.
package reminders

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cargaplay/whatsapp-relay/internal/ports"
	"github.com/cargaplay/whatsapp-relay/internal/shared/config"
	"github.com/cargaplay/whatsapp-relay/internal/shared/httpx"
	"github.com/cargaplay/whatsapp-relay/internal/shared/logger"
)

const defaultFirstName = "Cliente"

type Handler struct {
	routes []config.ReminderRoute
	sender ports.TemplateSender
	logger *logger.Logger
}

func NewHandler(routes []config.ReminderRoute, sender ports.TemplateSender, logger *logger.Logger) *Handler {
	return &Handler{routes: routes, sender: sender, logger: logger}
}

// Register mounts one POST route per reminder.
func (handler *Handler) Register(r chi.Router) {
	for _, route := range handler.routes {
		r.Post(route.Path, handler.reminder(route))
	}
}

type contactRequest struct {
	FirstName string `json:"first_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

func (handler *Handler) reminder(route config.ReminderRoute) http.HandlerFunc {
	name := strings.TrimPrefix(route.Path, "/webhook/")

	return func(w http.ResponseWriter, r *http.Request) {
		// a shutdown or a disconnecting caller must not abort the send
		ctx := context.WithoutCancel(r.Context())

		var req contactRequest
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			handler.logger.Warn(ctx, "reminder_bad_body", "Malformed reminder body; sending defaults", map[string]any{
				"reminder": name,
				"error":    err.Error(),
			})
		}

		handler.logger.Info(ctx, "reminder_received", "Reminder webhook received", map[string]any{
			"reminder": name,
			"template": route.Template,
			"email":    req.Email,
		})

		firstName := req.FirstName
		if firstName == "" {
			firstName = defaultFirstName
		}

		// failures are logged by the sender
		_ = handler.sender.SendTemplate(ctx, req.Phone, route.Template, []string{firstName})

		httpx.WriteText(w, http.StatusOK, "Webhook de "+strings.ReplaceAll(name, "_", " ")+" processado.")
	}
}
