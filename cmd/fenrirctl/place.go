package main

import (
	"strings"
	"time"

	"fenrir/internal/common"
	fenrirnet "fenrir/internal/net"

	"github.com/spf13/cobra"
)

func newPlaceCommand() *cobra.Command {
	var symbol, side, id string
	var quantity uint64
	var price float64
	var market bool

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place a limit or market order",
		RunE: func(cmd *cobra.Command, args []string) error {
			orderSide, err := common.NormalizeSide(side)
			if err != nil {
				return err
			}

			m := fenrirnet.OrderMessage{
				BaseMessage: fenrirnet.BaseMessage{TypeOf: fenrirnet.NewOrder},
				Symbol:      symbol,
				Side:        orderSide,
				Quantity:    quantity,
				ID:          id,
			}
			if !market {
				m.Price = &price
			}

			return dialAndAwaitReports(m.Serialize(), time.Second)
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "ticker symbol (required)")
	cmd.Flags().StringVar(&side, "side", "buy", "buy or sell")
	cmd.Flags().Uint64Var(&quantity, "qty", 0, "order quantity (required)")
	cmd.Flags().Float64Var(&price, "price", 0, "limit price (ignored if --market)")
	cmd.Flags().BoolVar(&market, "market", false, "place a market order instead of a limit order")
	cmd.Flags().StringVar(&id, "id", "", "client-supplied order id (optional, server assigns one if empty)")
	cmd.MarkFlagRequired("symbol")
	cmd.MarkFlagRequired("qty")

	return cmd
}

func newCancelCommand() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a resting order by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := fenrirnet.CancelOrderMessage{
				BaseMessage: fenrirnet.BaseMessage{TypeOf: fenrirnet.CancelOrder},
				ID:          id,
			}
			return dialAndAwaitReports(m.Serialize(), time.Second)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "order id to cancel (required)")
	cmd.MarkFlagRequired("id")

	return cmd
}

func newExecuteCommand() *cobra.Command {
	var symbol, side, id string
	var quantity uint64
	var price float64
	var market bool
	var matchOnly bool

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Run a matching round, optionally placing an order first",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := fenrirnet.OrderMessage{
				BaseMessage: fenrirnet.BaseMessage{TypeOf: fenrirnet.ExecuteOrder},
				Symbol:      symbol,
				ID:          id,
			}
			if !matchOnly {
				orderSide, err := common.NormalizeSide(side)
				if err != nil {
					return err
				}
				m.Side = orderSide
				m.Quantity = quantity
				if !market {
					m.Price = &price
				}
			}

			return dialAndAwaitReports(m.Serialize(), time.Second)
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "ticker symbol (required)")
	cmd.Flags().StringVar(&side, "side", "buy", "buy or sell (ignored with --match-only)")
	cmd.Flags().Uint64Var(&quantity, "qty", 0, "order quantity (ignored with --match-only)")
	cmd.Flags().Float64Var(&price, "price", 0, "limit price (ignored if --market or --match-only)")
	cmd.Flags().BoolVar(&market, "market", false, "place a market order instead of a limit order")
	cmd.Flags().BoolVar(&matchOnly, "match-only", false, "run a matching round without placing a new order")
	cmd.Flags().StringVar(&id, "id", "", "client-supplied order id (optional)")
	cmd.MarkFlagRequired("symbol")

	return cmd
}

func newBookCommand() *cobra.Command {
	var symbol string

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Print the depth of book for a symbol",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := fenrirnet.BookRequestMessage{
				BaseMessage: fenrirnet.BaseMessage{TypeOf: fenrirnet.BookRequest},
				Symbol:      strings.TrimSpace(symbol),
			}
			return dialAndAwaitReports(m.Serialize(), time.Second)
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "ticker symbol (required)")
	cmd.MarkFlagRequired("symbol")

	return cmd
}
