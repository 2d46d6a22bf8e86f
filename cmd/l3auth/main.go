package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/layer-3/l3auth/adapters/events"
	"github.com/layer-3/l3auth/adapters/store"
	"github.com/layer-3/l3auth/service"
	transport "github.com/layer-3/l3auth/transport/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	conn := store.Open(ctx, redisURL)
	cancel()

	switch conn.Backend {
	case store.BackendRedis:
		logger.Info("store backend connected", "backend", conn.Backend)
	case store.BackendMemory:
		if conn.FallbackReason != nil {
			logger.Warn("falling back to in-memory store", "reason", conn.FallbackReason)
		} else {
			logger.Info("store backend selected", "backend", conn.Backend)
		}
	}
	defer conn.Close()

	wmLogger := watermill.NewStdLogger(false, false)
	var publisher message.Publisher
	if client := conn.Client(); client != nil {
		var err error
		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: client},
			wmLogger,
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}
	} else {
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
	}

	nonces := service.NewNonceManager(conn.Store("nonce"), service.NonceManagerOptions{})
	sessions := service.NewSessionManager(conn.Store("session"), service.SessionManagerOptions{
		TTL: sessionTTLFromEnv(),
	})
	auth := service.NewAuthService(
		nonces,
		sessions,
		service.NewVerifierRegistry(),
		events.NewWatermillPublisher(publisher),
		logger,
	)

	router := transport.SetupRouter(auth, os.Getenv("AUTH_DOMAIN"))

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func sessionTTLFromEnv() time.Duration {
	raw := os.Getenv("SESSION_TTL_SECONDS")
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
