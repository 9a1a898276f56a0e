// seed-admin crea (o promueve) la cuenta de administrador configurada en
// ADMIN_EMAIL / ADMIN_PASSWORD y promueve los emails de ADMIN_PROMOTE_EMAILS.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"storefront-api/internal/config"
	"storefront-api/internal/repository"
	"storefront-api/internal/service"
)

func main() {
	list := flag.Bool("list", false, "solo listar los administradores")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuración inválida: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := repository.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	users := service.NewUserService(repository.NewMongoUserRepository(db), repository.NewMongoOrderRepository(db))

	if *list {
		printAdmins(ctx, users)
		return
	}

	if err := cfg.Admin.Validate(); err != nil {
		log.Fatalf("Configuración de admin inválida: %v", err)
	}
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Error creando índices: %v", err)
	}

	u, created, err := users.EnsureAdmin(ctx, cfg.Admin)
	if err != nil {
		log.Fatalf("Error creando admin: %v", err)
	}
	if created {
		fmt.Printf("✅ Admin creado: %s\n", u.Email)
	} else {
		fmt.Printf("ℹ️  %s ya existe y es admin\n", u.Email)
	}

	failed := false
	for _, email := range cfg.Admin.PromoteEmails {
		p, err := users.Promote(ctx, email)
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			fmt.Printf("⚠️  %s no está registrado, se omite\n", email)
		case err != nil:
			log.Printf("[admin] error promoviendo %s: %v", email, err)
			failed = true
		default:
			fmt.Printf("✅ %s es admin\n", p.Email)
		}
	}

	printAdmins(ctx, users)
	if failed {
		os.Exit(1)
	}
}

func printAdmins(ctx context.Context, users *service.UserService) {
	admins, err := users.Admins(ctx)
	if err != nil {
		log.Fatalf("Error listando admins: %v", err)
	}
	fmt.Printf("Administradores (%d):\n", len(admins))
	for _, a := range admins {
		fmt.Printf("  - %s <%s>\n", a.Name, a.Email)
	}
}
