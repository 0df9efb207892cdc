// Package main issues operator access tokens for the admin and status
// endpoints, signed with ADMIN_JWT_SIGNING_KEY.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/stationcal/stationcal/internal/auth"
	"github.com/stationcal/stationcal/internal/config"
)

func main() {
	operator := flag.String("operator", "", "operator identity stored as the token subject (required)")
	scopes := flag.String("scopes", auth.ScopeStatus+","+auth.ScopeSync, "comma-separated scopes to grant")
	ttl := flag.Duration("ttl", auth.DefaultTokenTTL, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *operator == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	var granted []string
	for _, s := range strings.Split(*scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			granted = append(granted, s)
		}
	}

	token, expiresAt, err := auth.NewTokenService(cfg.Admin).Generate(*operator, granted, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to issue token")
	}

	log.Info().
		Str("operator", *operator).
		Strs("scopes", granted).
		Time("expires_at", expiresAt).
		Msg("token issued")
	fmt.Println(token)
}
