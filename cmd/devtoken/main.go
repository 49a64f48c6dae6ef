// Command devtoken mints a bearer token for local use of the API.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"conferencecentral/internal/adapters/auth"
	"conferencecentral/internal/domain"
)

const defaultExpiry = 24 * time.Hour

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		slog.Error("devtoken failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "devtoken",
		Usage: "Print a signed JWT for the given user.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "user id (sub claim)", Required: true},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "email claim"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "display name claim"},
			&cli.DurationFlag{Name: "expiry", Value: defaultExpiry, Usage: "token lifetime"},
			&cli.StringFlag{Name: "secret", EnvVars: []string{"JWT_SECRET"}, Usage: "signing secret"},
		},
		Action: func(c *cli.Context) error {
			expiry := c.Duration("expiry")
			if expiry <= 0 {
				expiry = defaultExpiry
			}
			token, err := auth.NewJWTIssuer(c.String("secret")).Issue(domain.Identity{
				UserID:      c.String("user"),
				Email:       c.String("email"),
				DisplayName: c.String("name"),
			}, expiry)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}
