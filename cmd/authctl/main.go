// Command authctl runs the operational setup routines for the auth
// service: role seeding, service registration and role/service grants.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fieldstack/auth-service/internal/config"
	"github.com/fieldstack/auth-service/internal/database"
	"github.com/fieldstack/auth-service/internal/registry"
	"github.com/fieldstack/auth-service/internal/repository"
	"github.com/fieldstack/auth-service/pkg/redis"
	"github.com/spf13/pflag"
)

const usage = `usage: authctl <command> [flags]

commands:
  seed-roles          create any missing roles
  register-services   reconcile the services table against the declared set
  grant               bind a service to a role (--role, --service)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		fatal(err)
	}
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		fatal(err)
	}
	store := repository.NewStore(db, redisClient)

	ctx := context.Background()
	command := os.Args[1]

	switch command {
	case "seed-roles":
		if err := registry.SeedRoles(ctx, store); err != nil {
			fatal(err)
		}
		fmt.Println("User Roles added successfully.")

	case "register-services":
		if err := registry.RegisterServices(ctx, store, registry.DeclaredServices); err != nil {
			fatal(err)
		}
		fmt.Println("Services registered successfully.")

	case "grant":
		flags := pflag.NewFlagSet("grant", pflag.ExitOnError)
		role := flags.String("role", "", "role name to grant the service to")
		svc := flags.String("service", "", "service code name to grant")
		if err := flags.Parse(os.Args[2:]); err != nil {
			fatal(err)
		}
		if *role == "" || *svc == "" {
			fmt.Fprintln(os.Stderr, "grant requires --role and --service")
			os.Exit(2)
		}
		if err := registry.GrantService(ctx, store, *role, *svc); err != nil {
			fatal(err)
		}
		fmt.Printf("Granted %s to %s.\n", *svc, *role)

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
