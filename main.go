package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Amund211/eventlight/internal/adapters/eventprovider"
	"github.com/Amund211/eventlight/internal/config"
	"github.com/Amund211/eventlight/internal/logging"
	"github.com/Amund211/eventlight/internal/ports"
	"github.com/Amund211/eventlight/internal/querycache"
	"github.com/Amund211/eventlight/internal/ratelimiting"
	"github.com/Amund211/eventlight/internal/reporting"
	"github.com/Amund211/eventlight/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "golang.org/x/crypto/x509roots/fallback"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionID := uuid.New().String()

	config, err := config.ConfigFromEnv()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("Failed to load config", "error", err.Error())
		return 1
	}

	// Stdout belongs to the views
	ctx = logging.AddToContext(ctx, slog.New(logging.NewTracingLogHandler(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: config.LogLevel()}),
	)))
	ctx = logging.AddSessionToContext(ctx, sessionID)
	logger := logging.FromContext(ctx)

	fail := func(msg string, args ...any) int {
		logger.ErrorContext(ctx, msg, args...)
		return 1
	}

	logger.InfoContext(ctx, "Loaded config", "config", config.NonSensitiveString())

	sentryCtx, flush, err := reporting.NewSentryOrMock(ctx, config)
	if err != nil {
		return fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	ctx = reporting.SetSessionIDInContext(sentryCtx, sessionID)
	logger.InfoContext(ctx, "Initialized Sentry")

	shutdownOTel, err := telemetry.SetupOTelSDK(ctx, "eventlight", config.OTLPEndpoint())
	if err != nil {
		return fail("Failed to initialize OpenTelemetry", "error", err.Error())
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			logger.WarnContext(ctx, "Failed to shut down OpenTelemetry", "error", err.Error())
		}
	}()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(logging.NewLoggingTransport(http.DefaultTransport, time.Now)),
	}

	endpointLimiter, stopLimiter := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(config.RequestsPerSecond()),
		ratelimiting.BurstSize(max(1, int(config.RequestsPerSecond()))),
	)
	defer stopLimiter()
	requestLimiter := ratelimiting.NewRequestBasedRateLimiter(endpointLimiter, eventprovider.EndpointKeyFunc)

	provider, err := eventprovider.NewEventsAPIOrMock(config, httpClient, requestLimiter)
	if err != nil {
		return fail("Failed to initialize events API", "error", err.Error())
	}
	logger.InfoContext(ctx, "Initialized events API", "mocked", config.EventsAPIURL() == "")

	store := querycache.NewStore(querycache.Options{
		GCTime:  config.GCTime(),
		NowFunc: time.Now,
	})
	defer store.Dispose()

	views := ports.NewViews(ports.ViewsOptions{
		Store:        store,
		Provider:     provider,
		StaleTime:    config.StaleTime(),
		ImageBaseURL: config.EventsAPIURL(),
		Out:          os.Stdout,
	})

	root := ports.NewRootCommand(views, ports.CommandOptions{NowFunc: time.Now})

	logger.InfoContext(ctx, "Init complete")
	err = root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ports.ErrViewFailed):
		// Already rendered
		return 1
	case ctx.Err() != nil:
		logger.InfoContext(ctx, "Interrupted")
		return 130
	default:
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
}
