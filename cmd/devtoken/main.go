// Command devtoken prints an access token for local testing of the API.
//
//	go run ./cmd/devtoken -user 10 -role user
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iliyamo/nightclub-booking/internal/config"
	"github.com/iliyamo/nightclub-booking/internal/utils"
)

func main() {
	userID := flag.Uint64("user", 1, "subject user id")
	role := flag.String("role", "user", "admin, moderator or user")
	ttl := flag.Int("ttl", 0, "lifetime in minutes (defaults to ACCESS_TOKEN_TTL_MIN)")
	flag.Parse()

	cfg := config.Load()
	if *ttl <= 0 {
		*ttl = cfg.AccessTTLMin
	}

	tok, err := utils.NewAccessToken(cfg.JWTSecret, *userID, *role, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
	fmt.Fprintln(os.Stderr, "expires", tok.Exp.Format("2006-01-02 15:04:05 MST"))
}
