package engine

import "fenrir/internal/common"

// Market routes orders to a Product by symbol, auto-creating the Product
// on first reference, and mirrors each Product's entry index globally so
// an order id can be looked up without knowing its symbol.
type Market struct {
	products map[string]*Product
	entries  map[string]*OrderEntry
}

// NewMarket returns an empty market.
func NewMarket() *Market {
	return &Market{
		products: make(map[string]*Product),
		entries:  make(map[string]*OrderEntry),
	}
}

// HasProduct reports whether symbol has been referenced yet.
func (m *Market) HasProduct(symbol string) bool {
	_, ok := m.products[symbol]
	return ok
}

// GetProduct returns the product for symbol, or nil if it hasn't been
// referenced yet.
func (m *Market) GetProduct(symbol string) *Product {
	return m.products[symbol]
}

// Products returns every product the market has seen, in no particular
// order.
func (m *Market) Products() []*Product {
	products := make([]*Product, 0, len(m.products))
	for _, product := range m.products {
		products = append(products, product)
	}
	return products
}

func (m *Market) ensureProduct(symbol string) (*Product, error) {
	if product, ok := m.products[symbol]; ok {
		return product, nil
	}
	product, err := NewProduct(symbol)
	if err != nil {
		return nil, err
	}
	m.products[symbol] = product
	return product, nil
}

// Place routes order to its symbol's product, creating the product if
// needed, and mirrors the resulting entry into the market's global id
// index.
func (m *Market) Place(order common.Order) error {
	if order.ID != "" {
		if _, exists := m.entries[order.ID]; exists {
			return ErrDuplicateOrderID
		}
	}

	product, err := m.ensureProduct(order.Symbol)
	if err != nil {
		return err
	}

	entry, err := product.Place(order)
	if err != nil {
		return err
	}

	m.entries[entry.OrderID()] = entry
	return nil
}

// Cancel cancels the order previously placed under order.ID, routing to
// the product that originally booked it.
func (m *Market) Cancel(order common.Order) error {
	entry, ok := m.entries[order.ID]
	if !ok {
		return ErrNoSuchOrderID
	}

	product, err := m.ensureProduct(entry.Symbol())
	if err != nil {
		return err
	}

	return product.Cancel(order)
}

// Execute places order (if given) against its symbol's product and then
// runs that product's matching round. With no order, it sweeps every
// product in the market, concatenating their Executions; the iteration
// order across products is not guaranteed.
func (m *Market) Execute(order *common.Order) ([]*Execution, error) {
	if order != nil {
		if err := m.Place(*order); err != nil {
			return nil, err
		}
		product, err := m.ensureProduct(order.Symbol)
		if err != nil {
			return nil, err
		}
		return product.Execute(nil)
	}

	var executions []*Execution
	for _, product := range m.products {
		ex, err := product.Execute(nil)
		if err != nil {
			return nil, err
		}
		executions = append(executions, ex...)
	}
	return executions, nil
}

// GetOrderByID returns the order as originally placed, or false if no
// such id has been seen by this market.
func (m *Market) GetOrderByID(id string) (common.Order, bool) {
	entry, ok := m.entries[id]
	if !ok {
		return common.Order{}, false
	}
	return entry.Order(), true
}

// PlaceOrder is a convenience constructor mirroring place_order in the
// marketsim source: it builds an Order from its parts and dispatches.
// price, t and id may be nil/empty for "unset".
func (m *Market) PlaceOrder(side common.Side, symbol string, quantity int64, price *float64, t *float64, id string) error {
	return m.Place(common.Order{Side: side, Symbol: symbol, Quantity: quantity, Price: price, Time: t, ID: id})
}

// CancelOrder is a convenience constructor for Cancel given only an id.
func (m *Market) CancelOrder(id string) error {
	return m.Cancel(common.Order{ID: id})
}

// ExecuteOrder is a convenience constructor for Execute given order
// parts.
func (m *Market) ExecuteOrder(side common.Side, symbol string, quantity int64, price *float64, t *float64, id string) ([]*Execution, error) {
	order := common.Order{Side: side, Symbol: symbol, Quantity: quantity, Price: price, Time: t, ID: id}
	return m.Execute(&order)
}
