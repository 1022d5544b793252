package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fenrir/internal/common"
	"github.com/google/uuid"
)

// Product holds both side books for one symbol and dispatches
// place/cancel/execute against them.
type Product struct {
	symbol      string
	orderQueues map[common.Side]*OrderQueue
	entries     map[string]*OrderEntry
	lastPrice   *float64
}

// NewProduct constructs an empty product for symbol. symbol must not be
// empty (see common.ErrMissingSymbol).
func NewProduct(symbol string) (*Product, error) {
	if symbol == "" {
		return nil, common.ErrMissingSymbol
	}
	return &Product{
		symbol: symbol,
		orderQueues: map[common.Side]*OrderQueue{
			common.Buy:  NewOrderQueue(),
			common.Sell: NewOrderQueue(),
		},
		entries: make(map[string]*OrderEntry),
	}, nil
}

func (p *Product) Symbol() string      { return p.symbol }
func (p *Product) BidPrice() *float64  { return p.orderQueues[common.Buy].NextPrice() }
func (p *Product) AskPrice() *float64  { return p.orderQueues[common.Sell].NextPrice() }
func (p *Product) LastPrice() *float64 { return p.lastPrice }

// OrderQueue returns the side book for side, which may be a common.Side,
// its ordinal, or its case-insensitive name (see common.NormalizeSide).
func (p *Product) OrderQueue(side any) (*OrderQueue, error) {
	normalized, err := common.NormalizeSide(side)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSideIndex, err)
	}
	return p.orderQueues[normalized], nil
}

// Place books a fresh OrderEntry for order, assigning a process-unique id
// via uuid.New() if order.ID is empty. Fails with ErrDuplicateOrderID if
// order.ID (after assignment) is already indexed.
func (p *Product) Place(order common.Order) (*OrderEntry, error) {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if _, exists := p.entries[order.ID]; exists {
		return nil, ErrDuplicateOrderID
	}

	entry := NewOrderEntry(order)
	p.orderQueues[order.Side].Push(entry)
	p.entries[order.ID] = entry
	return entry, nil
}

// Cancel cancels the order previously placed under order.ID. Only
// order.ID is consulted; a fresh Order value with only ID set succeeds.
func (p *Product) Cancel(order common.Order) error {
	entry, ok := p.entries[order.ID]
	if !ok {
		return ErrNoSuchOrderID
	}

	switch entry.State() {
	case StateFullyFilled:
		return ErrAlreadyFullyFilled
	case StateCancelled:
		return ErrAlreadyCancelled
	}

	p.orderQueues[entry.Side()].Cancel(entry)
	return nil
}

// Execute optionally places order first, then matches the bid book
// against the ask book. If any Execution resulted, LastPrice is updated
// to the final execution's (uniform) price.
func (p *Product) Execute(order *common.Order) ([]*Execution, error) {
	if order != nil {
		if _, err := p.Place(*order); err != nil {
			return nil, err
		}
	}

	bid := p.orderQueues[common.Buy]
	ask := p.orderQueues[common.Sell]

	executions := bid.Execute(ask)
	if len(executions) > 0 {
		p.lastPrice = executions[len(executions)-1].Price
	}
	return executions, nil
}

// GetOrderByID returns the order as originally placed (with its
// synthesized id, if any), or false if no such id is indexed. Cancelled
// and fully-filled orders remain discoverable indefinitely.
func (p *Product) GetOrderByID(id string) (common.Order, bool) {
	entry, ok := p.entries[id]
	if !ok {
		return common.Order{}, false
	}
	return entry.Order(), true
}

// PlaceOrder is a convenience constructor mirroring place_order in the
// marketsim source: it builds an Order from its parts and dispatches.
func (p *Product) PlaceOrder(side common.Side, quantity int64, price *float64, t *float64, id string) (*OrderEntry, error) {
	return p.Place(common.Order{Side: side, Symbol: p.symbol, Quantity: quantity, Price: price, Time: t, ID: id})
}

// CancelOrder is a convenience constructor for Cancel given only an id.
func (p *Product) CancelOrder(id string) error {
	return p.Cancel(common.Order{ID: id})
}

// ExecuteOrder is a convenience constructor for Execute given order
// parts.
func (p *Product) ExecuteOrder(side common.Side, quantity int64, price *float64, t *float64, id string) ([]*Execution, error) {
	order := common.Order{Side: side, Symbol: p.symbol, Quantity: quantity, Price: price, Time: t, ID: id}
	return p.Execute(&order)
}

// FormatOrderBook renders the product's depth of book as a
// "BID | PRICE | ASK" table, one row per distinct limit price across
// both sides, sorted by price descending. Market-order levels (price
// nil) carry no stable price to sort or print against, so they are
// excluded from the table; they still take part in matching.
// BidPrice/AskPrice report limit prices only.
func (p *Product) FormatOrderBook() string {
	type cell struct {
		bid, ask string
	}
	byPrice := make(map[float64]*cell)

	fill := func(side common.Side, stats []OrderStat) {
		for _, stat := range stats {
			if stat.Price == nil {
				continue
			}
			c, ok := byPrice[*stat.Price]
			if !ok {
				c = &cell{}
				byPrice[*stat.Price] = c
			}
			text := fmt.Sprintf("%d (%d)", stat.Volume, stat.Count)
			if side == common.Buy {
				c.bid = text
			} else {
				c.ask = text
			}
		}
	}
	fill(common.Buy, p.orderQueues[common.Buy].GetOrderBook())
	fill(common.Sell, p.orderQueues[common.Sell].GetOrderBook())

	prices := make([]float64, 0, len(byPrice))
	for price := range byPrice {
		prices = append(prices, price)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(prices)))

	rows := [][3]string{{"BID", "PRICE", "ASK"}, {"===", "=====", "==="}}
	for _, price := range prices {
		c := byPrice[price]
		rows = append(rows, [3]string{c.bid, strconv.FormatFloat(price, 'g', -1, 64), c.ask})
	}

	var width [3]int
	for _, row := range rows {
		for i, v := range row {
			if len(v) > width[i] {
				width[i] = len(v)
			}
		}
	}

	var out []string
	for _, row := range rows {
		cells := make([]string, 3)
		for i, v := range row {
			cells[i] = fmt.Sprintf("%-*s", width[i], v)
		}
		out = append(out, "| "+strings.Join(cells, " | ")+" |")
	}
	sepCells := make([]string, 3)
	for i := range sepCells {
		sepCells[i] = strings.Repeat("=", width[i]+2)
	}
	out[1] = "|" + strings.Join(sepCells, "|") + "|"

	return strings.Join(out, "\n")
}
