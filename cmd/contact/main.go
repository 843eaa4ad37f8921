// Command contact submits the portfolio contact form from a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/mquernel/portfolio/backend/internal/logging"
	"github.com/mquernel/portfolio/backend/pkg/client"
)

func main() {
	logging.Setup(os.Getenv("LOG_LEVEL"), "portfolio-contact")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("contact", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		host    = fs.String("host", "localhost", "front-end host used to pick the API (overridden by "+client.BaseURLEnv+")")
		status  = fs.Bool("status", false, "only check API connectivity")
		name    = fs.String("name", "", "sender name")
		email   = fs.String("email", "", "sender email")
		message = fs.String("message", "", "message body")
		timeout = fs.Duration("timeout", 20*time.Second, "request timeout")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	api := client.NewClient(client.ResolveBaseURL(*host))
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if *status {
		c := client.NewStatusMonitor(api, time.Minute).Check(ctx)
		fmt.Fprintf(stdout, "%s: %s\n", api.BaseURL, c)
		if c != client.ConnectivityOK {
			return 1
		}
		return 0
	}

	form := client.NewForm(api)
	form.Set(client.FieldName, *name)
	form.Set(client.FieldEmail, *email)
	form.Set(client.FieldMessage, *message)

	resp, err := form.Submit(ctx)
	st := form.Status()
	if err != nil {
		fmt.Fprintln(stderr, st.Message)
		if errors.Is(err, client.ErrMissingFields) {
			fs.Usage()
			return 2
		}
		return 1
	}
	fmt.Fprintln(stdout, st.Message)
	if resp.EmailWarning != "" {
		fmt.Fprintln(stderr, resp.EmailWarning)
	}
	fmt.Fprintf(stdout, "sender_id=%d message_id=%d\n", resp.SenderID, resp.MessageID)
	return 0
}
