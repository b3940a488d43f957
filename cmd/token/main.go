// Command token prints a signed bearer token for local development and manual testing.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"explorewithme/config"
	"explorewithme/internal/adapters/auth"
)

func main() {
	userID := flag.Int64("user", 0, "user id placed in the sub claim")
	roles := flag.String("roles", "", "comma-separated roles, e.g. admin")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID <= 0 {
		fmt.Fprintln(os.Stderr, "usage: token -user <id> [-roles admin] [-expiry 24h]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var roleList []string
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roleList = append(roleList, r)
		}
	}

	token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(*userID, roleList, *expiry)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(token)
}
