package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "loanledger/internal/adapter/http"
	"loanledger/internal/adapter/middleware"
	"loanledger/internal/adapter/repository/mysql"
	"loanledger/internal/auth"
	"loanledger/internal/config"
	"loanledger/internal/domain/loan"
	"loanledger/internal/domain/user"
	"loanledger/internal/infrastructure/cache"
	"loanledger/internal/infrastructure/db"
	"loanledger/internal/observability"
	"loanledger/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Error("mysql connect failed", "err", err)
		os.Exit(1)
	}
	if err := gdb.AutoMigrate(&user.User{}, &loan.Loan{}, &loan.Payment{}); err != nil {
		log.Error("auto-migrate failed", "err", err)
		os.Exit(1)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Error("redis connect failed", "err", err)
		os.Exit(1)
	}

	usersRepo := mysql.NewUserRepository(gdb)
	loansRepo := mysql.NewLoanRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	sessions := store.NewManager(usersRepo, loansRepo, tx, cfg.AdminEmail, log)
	tokens := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())

	h := httpadp.NewHandler()
	authH := httpadp.NewAuthHandler(sessions, tokens)
	loanH := httpadp.NewLoanHandler()
	userH := httpadp.NewUserHandler()

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	// routes
	e.GET("/health", h.Health)
	e.POST("/auth/login", authH.Login)

	authed := e.Group("", middleware.Auth(tokens, sessions))
	authed.POST("/auth/logout", authH.Logout)
	authed.GET("/loans", loanH.ListLoans)
	authed.GET("/loans/:loan_id", loanH.GetLoan)
	authed.GET("/users", userH.ListUsers)
	authed.GET("/users/:uid/loans", loanH.ListUserLoans)

	// mutations sit behind the idempotency lock
	mutating := e.Group("", middleware.Auth(tokens, sessions), middleware.Idempotency(rdb, cfg.IdempTTL(), log))
	mutating.POST("/loans", loanH.CreateLoan)
	mutating.POST("/loans/request", loanH.RequestLoan)
	mutating.POST("/loans/:loan_id/payments", loanH.AddPayment)
	mutating.PATCH("/loans/:loan_id/status", loanH.UpdateStatus)

	addr := ":" + cfg.AppPort
	log.Info("listening", "addr", addr)
	if err := e.Start(addr); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
