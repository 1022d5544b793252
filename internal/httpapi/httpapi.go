// Package httpapi exposes a read-only HTTP surface over a Market: per
// symbol order book depth (JSON and the plain-text table Product
// renders), plus the Prometheus scrape endpoint.
package httpapi

import (
	"encoding/json"
	"net/http"

	"fenrir/internal/common"
	"fenrir/internal/engine"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// NewRouter builds the admin HTTP surface for market. metricsHandler is
// typically promhttp.HandlerFor bound to the caller's registry.
func NewRouter(market *engine.Market, metricsHandler http.Handler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/symbols/{symbol}/book", bookJSONHandler(market)).Methods(http.MethodGet)
	router.HandleFunc("/symbols/{symbol}/book.txt", bookTextHandler(market)).Methods(http.MethodGet)
	router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	return router
}

type bookLevel struct {
	Price  *float64 `json:"price"`
	Volume int64    `json:"volume"`
	Count  int      `json:"count"`
}

type bookResponse struct {
	Symbol    string      `json:"symbol"`
	LastPrice *float64    `json:"last_price,omitempty"`
	Bids      []bookLevel `json:"bids"`
	Asks      []bookLevel `json:"asks"`
}

func bookJSONHandler(market *engine.Market) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, symbol, ok := lookupProduct(market, w, r)
		if !ok {
			return
		}

		bid, err := product.OrderQueue(common.Buy)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		ask, err := product.OrderQueue(common.Sell)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		response := bookResponse{
			Symbol:    symbol,
			LastPrice: product.LastPrice(),
			Bids:      toBookLevels(bid.GetOrderBook()),
			Asks:      toBookLevels(ask.GetOrderBook()),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error().Err(err).Msg("failed encoding book response")
		}
	}
}

func bookTextHandler(market *engine.Market) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, _, ok := lookupProduct(market, w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(product.FormatOrderBook()))
	}
}

func lookupProduct(market *engine.Market, w http.ResponseWriter, r *http.Request) (*engine.Product, string, bool) {
	symbol := mux.Vars(r)["symbol"]
	product := market.GetProduct(symbol)
	if product == nil {
		http.Error(w, "unknown symbol", http.StatusNotFound)
		return nil, "", false
	}
	return product, symbol, true
}

func toBookLevels(stats []engine.OrderStat) []bookLevel {
	levels := make([]bookLevel, len(stats))
	for i, stat := range stats {
		levels[i] = bookLevel{Price: stat.Price, Volume: stat.Volume, Count: stat.Count}
	}
	return levels
}
