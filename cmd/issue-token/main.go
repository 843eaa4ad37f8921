// Command issue-token mints a bearer token for the operator endpoints.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mquernel/portfolio/backend/internal/config"
	"github.com/mquernel/portfolio/backend/internal/logging"
	"github.com/mquernel/portfolio/backend/pkg/auth"
)

func main() {
	cfg, err := config.Load(".env", "../.env")
	if err != nil {
		logging.Setup("INFO", "portfolio-issue-token")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel, "portfolio-issue-token")

	os.Exit(run(auth.NewIssuer(cfg.JWTSecret), os.Args[1:], os.Stdout, os.Stderr))
}

func run(issuer *auth.Issuer, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		id    = fs.String("id", "", "user id (token subject)")
		email = fs.String("email", "", "user email")
		roles = fs.String("roles", auth.RoleAdmin, "comma-separated roles")
		ttl   = fs.Duration("ttl", 24*time.Hour, "token lifetime")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *id == "" {
		fmt.Fprintln(stderr, "-id is required")
		fs.Usage()
		return 2
	}

	var rs []string
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			rs = append(rs, r)
		}
	}

	token, err := issuer.Issue(auth.Identity{ID: *id, Email: *email, Roles: rs}, *ttl)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, token)
	return 0
}
