package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cargaplay/whatsapp-relay/cmd/relayservice"
	"github.com/cargaplay/whatsapp-relay/cmd/sendtemplate"
	"github.com/cargaplay/whatsapp-relay/internal/cli"
)

func main() {
	// check for help flag first
	if len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		cli.PrintUsage(os.Stdout)
		os.Exit(0)
	}

	// parse all command-line arguments
	mode, svcArgs, err := cli.ParseMode(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cli.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	// the relay is the default mode
	if mode == "" {
		mode = cli.ModeRelay
	}

	// create context cancelled on SIGINT/SIGTERM signals ensuring graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// run the mode
	switch mode {
	case cli.ModeRelay:
		fs := flag.NewFlagSet(cli.ModeRelay, flag.ContinueOnError)
		port := fs.Int("port", 0, "HTTP port for the webhooks (default: $PORT or 3000)")
		cli.AttachUsage(fs, cli.ModeRelay)

		if err := fs.Parse(svcArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}

		if *port < 0 || *port > 65535 {
			fmt.Fprintln(os.Stderr, "Error: --port must be between 1 and 65535")
			fs.Usage()
			os.Exit(2)
		}

		if err := relayservice.Run(ctx, *port); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	case cli.ModeSendTemplate:
		fs := flag.NewFlagSet(cli.ModeSendTemplate, flag.ContinueOnError)
		to := fs.String("to", "", "Recipient phone number, any format (required)")
		template := fs.String("template", "", "Approved template name (required)")
		var params cli.StringList
		fs.Var(&params, "param", "Body placeholder value, in order (repeatable)")
		cli.AttachUsage(fs, cli.ModeSendTemplate)

		if err := fs.Parse(svcArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}

		if *to == "" || *template == "" {
			fmt.Fprintln(os.Stderr, "Error: --to and --template are required")
			fs.Usage()
			os.Exit(2)
		}

		opts := sendtemplate.Options{To: *to, Template: *template, Params: params}
		if err := sendtemplate.Run(ctx, opts); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}
}
