package main

import (
	"errors"
	"fmt"
	"time"

	"lumina/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the API",
	Long:  `Signs an HS256 token with AUTH_JWT_SECRET for use as "Authorization: Bearer <token>" or ?token= on websockets.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fatal("Error loading config", err)
		}
		tok, err := mintToken(cfg.AuthJWTSecret, tokenSubject, tokenTTL, time.Now())
		if err != nil {
			fatal("Error minting token", err)
		}
		fmt.Println(tok)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenSubject, "sub", "owner", "Token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 30*24*time.Hour, "Token lifetime")
}

func mintToken(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("AUTH_JWT_SECRET is not set, the API accepts requests without a token")
	}
	if subject == "" {
		return "", errors.New("subject cannot be empty")
	}
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
