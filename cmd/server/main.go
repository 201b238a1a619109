package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/joho/godotenv"
	"github.com/openfpl/draft-backend/internal/draft"
	"github.com/openfpl/draft-backend/internal/httpapi"
	"github.com/openfpl/draft-backend/internal/hub"
	"github.com/openfpl/draft-backend/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	logger := newLogger()
	defer logger.Sync()

	connString := os.Getenv("POSTGRES_CONN_STR")

	portNum := 8080 // 8080 is the default
	if port := os.Getenv("PORT"); port != "" {
		var err error
		portNum, err = strconv.Atoi(port)
		if err != nil {
			logger.Fatal("error parsing port number", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	clk := clock.New()
	st, err := store.New(ctx, connString, clk)
	if err != nil {
		logger.Fatal("cannot connect to DB", zap.Error(err))
	}
	defer st.Close()

	h := hub.NewHub(ctx, logger)
	registry := draft.NewRegistry()
	coord := draft.NewCoordinator(st, registry, h, clk, logger)
	scheduler := draft.NewScheduler(coord, clk, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", portNum),
		Handler: httpapi.SetupRoutes(coord, h, logger),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scheduler.Run(ctx)
	})

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server shutdown")
}

func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("error creating logger: %v", err)
	}
	return logger
}
