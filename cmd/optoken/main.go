// Command optoken mints a bearer token for the operator routes.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sheon-shop/storefront/internal/config"
	"github.com/sheon-shop/storefront/internal/httpx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	subject := flag.String("sub", "operator", "token subject")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	if cfg.AdminJWTSecret == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_JWT_SECRET is not set")
		os.Exit(1)
	}
	tok, err := httpx.IssueOperatorToken(cfg.AdminJWTSecret, *subject, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
