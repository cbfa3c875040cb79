package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gokatarajesh/h2h-trivia/internal/auth/jwt"
	"github.com/gokatarajesh/h2h-trivia/internal/config"
)

func main() {
	var (
		userID = flag.String("user-id", "", "Player UUID (random when empty)")
		name   = flag.String("name", "Player", "Display name")
		club   = flag.String("club", "", "Club id used for question affinity")
		guest  = flag.Bool("guest", false, "Issue a guest token (matches are not persisted)")
		ttl    = flag.Duration("ttl", time.Hour, "Token lifetime")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Warn().Err(err).Msg("could not load .env file")
		}
	}

	var sec config.Security
	if err := env.Parse(&sec); err != nil {
		log.Fatal().Err(err).Msg("invalid security configuration")
	}
	if sec.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required to issue tokens")
	}

	id := uuid.New()
	if *userID != "" {
		parsed, err := uuid.Parse(*userID)
		if err != nil {
			log.Fatal().Err(err).Str("user_id", *userID).Msg("user id must be a UUID")
		}
		id = parsed
	}

	tokens := jwt.NewManager(jwt.TokenConfig{
		AccessSecret: []byte(sec.JWTSecret),
		AccessTTL:    *ttl,
		Issuer:       sec.JWTIssuer,
	})
	token, err := tokens.GenerateAccessToken(jwt.User{
		ID:          id,
		DisplayName: *name,
		ClubID:      *club,
		IsGuest:     *guest,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign token")
	}

	log.Info().Str("user_id", id.String()).Dur("ttl", *ttl).Msg("token issued")
	fmt.Println(token)
}
