package main

import (
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/goliatone/kebapi"
)

func main() {
	settings, err := kebapi.LoadSettings()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(settings.DB.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	repos := kebapi.NewRepositoryManager(db)
	repos.MustValidate()

	tokens, err := kebapi.NewTokenService(settings.Token, nil)
	if err != nil {
		log.Fatalf("invalid token settings: %v", err)
	}

	auth := kebapi.NewAuthenticator(repos.Users(), tokens)

	server := kebapi.NewServer(settings, repos, auth, tokens, nil)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("shutting down...")
		if err := server.Shutdown(); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("listening on %s", settings.Server.Address)
	if err := server.Listen(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
