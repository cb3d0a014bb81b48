package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/Isaac-Coronel-Motas/castro-sub004/internal/auth"
	"github.com/Isaac-Coronel-Motas/castro-sub004/internal/grpcapi"
	"github.com/Isaac-Coronel-Motas/castro-sub004/internal/httpapi"
	"github.com/Isaac-Coronel-Motas/castro-sub004/internal/obs"
)

var version = "1.2.0"

func main() {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("CASTRO_COMMIT"))

	dsn := os.Getenv("CASTRO_PG_DSN")
	if dsn == "" {
		log.Fatal("CASTRO_PG_DSN is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	tokens, err := auth.NewTokenService(
		os.Getenv("CASTRO_JWT_SECRET"),
		os.Getenv("CASTRO_JWT_REFRESH_SECRET"),
	)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}
	authSvc, err := auth.NewService(auth.NewPGStore(db), tokens)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	api := httpapi.New(authSvc, tokens, httpapi.ReadyProbe{DB: db}, version)

	addr := os.Getenv("CASTRO_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcSrv := grpcapi.New()
	if grpcAddr := os.Getenv("CASTRO_GRPC_ADDR"); grpcAddr != "" {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		go func() {
			if err := grpcSrv.GRPC().Serve(lis); err != nil {
				log.Fatalf("grpc serve: %v", err)
			}
		}()
		log.Printf("gRPC health on %s", grpcAddr)
	}

	log.Printf("Starting castro-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	grpcSrv.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	grpcSrv.GRPC().GracefulStop()
	_ = db.Close()
	log.Println("Stopped")
}
