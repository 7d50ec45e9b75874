package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	jwttoken "usersearch/internal/jwt_token"
	"usersearch/internal/platform/config"
	id "usersearch/pkg/domain"
)

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint a requester token for local testing",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "uid", Usage: "Local uid the token names", Required: true},
			&cli.DurationFlag{Name: "ttl", Usage: "Token lifetime", Value: time.Hour},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load(c.String("config"), func(cfg *config.Config) {
				// Minting needs only the auth settings.
				cfg.Identity.Backend = config.IdentityBackendMemory
			})
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			uid, err := id.ParseUID(c.String("uid"))
			if err != nil {
				return err
			}

			svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
			token, err := svc.GenerateAccessToken(uid, c.Duration("ttl"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.Root().Writer, token)
			return err
		},
	}
}
