package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"marketplace/internal/config"
	"marketplace/internal/http/handlers"
	"marketplace/internal/identity"
	applog "marketplace/internal/log"
	"marketplace/internal/repos"
	"marketplace/internal/services"
)

func main() {
	issueFor := flag.String("issue-token", "", "print a dev bearer token for this user id and exit")
	email := flag.String("email", "", "email claim for -issue-token")
	category := flag.String("category", "", `create a category "Name|slug|description" and exit`)
	flag.Parse()

	cfg := config.Load()

	logger, err := applog.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[warn] could not open log file %s: %v\n", cfg.LogFile, err)
		logger, _ = applog.Init(cfg.LogLevel, "")
	}
	defer logger.Sync()

	if *issueFor != "" {
		v := identity.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
		claims := identity.Claims{Email: *email}
		claims.Subject = *issueFor
		tok, err := v.Issue(claims, 24*time.Hour)
		if err != nil {
			logger.Fatal("token.issue", zap.Error(err))
		}
		fmt.Println(tok)
		return
	}

	logger.Info("config.loaded", zap.Any("config", cfg.Fields()))

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		logger.Fatal("db.open", zap.Error(err))
	}
	defer db.Close()

	if *category != "" {
		parts := strings.SplitN(*category, "|", 3)
		for len(parts) < 3 {
			parts = append(parts, "")
		}
		catalog := services.NewCatalogService(repos.NewStore(db))
		cat, err := catalog.CreateCategory(context.Background(), parts[0], parts[1], parts[2])
		if err != nil {
			logger.Fatal("category.create", zap.Error(err))
		}
		logger.Info("category.create", zap.String("id", cat.ID), zap.String("slug", cat.Slug))
		return
	}

	app := handlers.NewApp(cfg, handlers.NewDeps(db, cfg), handlers.Options{})
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server.listen", zap.Error(err))
	}
}
