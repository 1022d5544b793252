// Command fenrird runs the matching engine behind a TCP order-entry
// server, a read-only HTTP admin surface, and a websocket market-data
// feed.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"fenrir/internal/engine"
	"fenrir/internal/httpapi"
	"fenrir/internal/marketdata"
	"fenrir/internal/metrics"
	fenrirnet "fenrir/internal/net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	tcpPort  = 9001
	httpPort = 9002
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	market := engine.NewMarket()
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	hub := marketdata.NewHub()

	server := fenrirnet.New("0.0.0.0", tcpPort, market).
		WithBroadcaster(hub).
		WithRecorder(collector)

	router := httpapi.NewRouter(market, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Handle("/marketdata", hub)

	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", httpPort), Handler: router}

	go func() {
		log.Info().Int("port", httpPort).Msg("http admin surface listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server stopped unexpectedly")
		}
	}()

	go func() {
		if err := server.Run(ctx); err != nil {
			log.Error().Err(err).Msg("tcp server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	_ = httpServer.Shutdown(context.Background())
}
