// cmd/sendtemplate/run.go
package sendtemplate

import (
	"context"
	"errors"
	"strings"

	"github.com/cargaplay/whatsapp-relay/internal/adapter/whatsapp"
	"github.com/cargaplay/whatsapp-relay/internal/ports"
	"github.com/cargaplay/whatsapp-relay/internal/shared/config"
	"github.com/cargaplay/whatsapp-relay/internal/shared/logger"
)

// Options is one template message to send.
type Options struct {
	To       string
	Template string
	Params   []string
}

func (opts Options) validate() error {
	var problems []string
	if strings.TrimSpace(opts.To) == "" {
		problems = append(problems, "--to is required")
	}
	if strings.TrimSpace(opts.Template) == "" {
		problems = append(problems, "--template is required")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Run sends a single template message with the relay's configuration and exits.
// Useful to check credentials and template names before wiring the webhooks.
func Run(ctx context.Context, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logger.New("send-template", cfg.LogLevel)
	defer logger.Sync()

	return send(ctx, whatsapp.New(cfg.WhatsApp, logger), opts)
}

func send(ctx context.Context, sender ports.TemplateSender, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	return sender.SendTemplate(ctx, opts.To, opts.Template, opts.Params)
}
