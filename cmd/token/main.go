// Command token mints a bearer token for local development.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Domenick1991/airport/config"
	"github.com/Domenick1991/airport/internal/auth"
)

func main() {
	user := flag.String("user", "", "user id placed in the sub claim")
	staff := flag.Bool("staff", false, "grant admin permissions")
	ttl := flag.Duration("ttl", 0, "token lifetime (default auth.token_ttl_minutes)")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "usage: token -user <id> [-staff] [-ttl 1h]")
		os.Exit(2)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	lifetime := *ttl
	if lifetime == 0 {
		lifetime = time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute
	}

	token, err := auth.NewAuthenticator(cfg.Auth.JWTSecret).IssueToken(*user, *staff, lifetime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
