package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

const (
	ModeRelay        = "relay-service"
	ModeSendTemplate = "send-template"
)

// isKnownMode checks if the provided mode name is known.
func isKnownMode(s string) (string, bool) {
	switch s {
	case ModeRelay, "relay", "serve":
		return ModeRelay, true
	case ModeSendTemplate, "send":
		return ModeSendTemplate, true
	default:
		return "", false
	}
}

// ParseMode supports:
//
//	--mode=<value>
//	<value> (subcommand shorthand), e.g., `relay-service --port=3001`
//
// An unknown --mode value is an error.
func ParseMode(args []string) (string, []string, error) {
	var mode string
	var out []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "--mode=") {
			mode = strings.TrimPrefix(arg, "--mode=")
			continue
		}

		if mode == "" {
			if m, ok := isKnownMode(arg); ok {
				mode = m
				continue
			}
		}
		out = append(out, arg)
	}

	if mode == "" {
		return "", out, nil
	}

	m, ok := isKnownMode(mode)
	if !ok {
		return "", out, fmt.Errorf("unknown mode %q", mode)
	}

	return m, out, nil
}

// PrintUsage prints the usage information with examples.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, "\033[36m") // switch the color to cyan

	fmt.Fprintln(w, `Usage:
  ./whatsapp-relay --mode=<mode> [flags]

Modes:
  relay-service    HTTP server for the order and reminder webhooks
  send-template    Send one WhatsApp template message and exit

Environment:
  WABA_ID, PHONE_NUMBER_ID, META_ACCESS_TOKEN      WhatsApp Business credentials
  WC_URL, WC_CONSUMER_KEY, WC_CONSUMER_SECRET      WooCommerce REST credentials
  AUTOMATOR_EMAIL_WEBHOOK_URL                      optional email automation webhook
  ORDER_SETTLE_DELAY, REMINDERS_FILE, LOG_LEVEL    tuning

Examples:
  ./whatsapp-relay --mode=relay-service --port=3000
  ./whatsapp-relay --mode=send-template --to=84998435471 --template=aviso_expiracao_hoje --param=Ana`)

	fmt.Fprint(w, "\033[0m") // switch back to normal
}

func AttachUsage(fs *flag.FlagSet, mode string) {
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: ./whatsapp-relay --mode=%s [flags]\n", mode)
		fs.PrintDefaults()
	}
}

// StringList is a repeatable string flag.
type StringList []string

func (l *StringList) String() string { return strings.Join(*l, ",") }

func (l *StringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
