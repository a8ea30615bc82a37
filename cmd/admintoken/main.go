// Command admintoken prints a signed bearer token for the admin endpoints,
// using the same JWT_SECRET the server reads.
package main

import (
	"flag"
	"fmt"

	"tle_userdb/internal/common/security"
	"tle_userdb/internal/platform/config"
	"tle_userdb/internal/platform/logging"
)

func main() {
	subject := flag.String("sub", "", "Discord id of the operator the token is issued to")
	role := flag.String("role", security.RoleAdmin, "role claim (admin or operator)")
	ttl := flag.Duration("ttl", 0, "token lifetime; defaults to JWT_EXPIRATION_HOURS")
	flag.Parse()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	log := logging.For("admintoken")

	if *subject == "" {
		log.Fatal("-sub is required")
	}
	if *role != security.RoleAdmin && *role != security.RoleOperator {
		log.Fatalf("unknown role %q", *role)
	}
	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = cfg.JWTExp
	}

	if err := security.InitJWT(cfg.JWTKey); err != nil {
		log.WithError(err).Fatal("Cannot sign tokens")
	}
	token, err := security.GenerateToken(*subject, *role, lifetime)
	if err != nil {
		log.WithError(err).Fatal("Could not sign token")
	}
	fmt.Println(token)
}
