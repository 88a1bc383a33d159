package orderwebhook

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cargaplay/whatsapp-relay/internal/domain/orders"
	"github.com/cargaplay/whatsapp-relay/internal/ports"
	"github.com/cargaplay/whatsapp-relay/internal/shared/httpx"
	"github.com/cargaplay/whatsapp-relay/internal/shared/logger"
)

const (
	OrderPath          = "/webhook/pedido"
	OrderCompletedPath = "/webhook/pedido_concluido"

	// CompletedTemplate is sent by the inline order-completed webhook.
	CompletedTemplate = "ped_concluido"

	defaultFirstName = "Cliente"
)

var errEmptyOrderKey = errors.New("order_key is required")

// Handler exposes the order pipeline and the inline order-completed webhook over HTTP.
type Handler struct {
	pipeline *Pipeline
	sender   ports.TemplateSender
	logger   *logger.Logger
}

func NewHandler(pipeline *Pipeline, sender ports.TemplateSender, logger *logger.Logger) *Handler {
	return &Handler{pipeline: pipeline, sender: sender, logger: logger}
}

// Register mounts both order routes.
func (handler *Handler) Register(r chi.Router) {
	r.Post(OrderPath, handler.handleOrder)
	r.Post(OrderCompletedPath, handler.handleOrderCompleted)
}

// --- Request DTOs (HTTP boundary) ---

type orderRequest struct {
	OrderKey orders.ID `json:"order_key"`
}

type orderCompletedRequest struct {
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Product   string `json:"produto"`
	Price     price  `json:"valor"`
	Code      string `json:"codigo"`
}

// price keeps the raw text of a string or numeric JSON value.
type price string

func (p *price) UnmarshalJSON(b []byte) error {
	var id orders.ID
	if err := id.UnmarshalJSON(b); err != nil {
		return err
	}
	*p = price(id)
	return nil
}

// --- Handlers ---

func (handler *Handler) handleOrder(w http.ResponseWriter, r *http.Request) {
	// the pipeline outlives a disconnecting caller
	ctx := context.WithoutCancel(r.Context())

	var req orderRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	res := handler.pipeline.Process(ctx, req.OrderKey)
	switch res.Outcome {
	case OutcomeDone:
		httpx.WriteText(w, http.StatusOK, "Webhook de pedido processado.")
	case OutcomeBadRequest:
		handler.httpError(ctx, w, res.Outcome.HTTPStatus(), "order_key ausente.", res.Err)
	default:
		handler.httpError(ctx, w, res.Outcome.HTTPStatus(), "Erro ao processar o pedido.", res.Err)
	}
}

func (handler *Handler) handleOrderCompleted(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())

	var req orderCompletedRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		handler.logger.Warn(ctx, "order_completed_bad_body", "Malformed order-completed body; sending defaults", map[string]any{
			"error": err.Error(),
		})
	}

	handler.logger.Info(ctx, "order_completed_received", "Order-completed webhook received", map[string]any{
		"email": req.Email,
	})

	// send failures are logged by the sender; the caller always gets 200
	_ = handler.sender.SendTemplate(ctx, req.Phone, CompletedTemplate, completedParams(req))
	httpx.WriteText(w, http.StatusOK, "Webhook de pedido concluído processado.")
}

func completedParams(req orderCompletedRequest) []string {
	return []string{
		orDefault(req.FirstName, defaultFirstName),
		orDefault(req.Product, orders.DefaultProductName),
		orders.FormatPrice(string(req.Price)),
		orDefault(req.Code, orders.ActivationCodeNotFound),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// httpError logs err and writes a short plain-text reply. The caller only ever sees
// the status and this text. Client errors are logged at warn level without a stack.
func (handler *Handler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	if status >= 500 {
		handler.logger.Error(ctx, "http_internal_error", msg, err)
	} else {
		action := "request_failed"
		if status == http.StatusBadRequest {
			action = "validation_failed"
		}
		details := map[string]any{"status": status}
		if err != nil {
			details["error"] = err.Error()
		}
		handler.logger.Warn(ctx, action, msg, details)
	}
	httpx.WriteText(w, status, msg)
}
