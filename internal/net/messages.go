// Package net implements fenrir's TCP wire protocol: fixed-header,
// variable-trailer binary messages for placing, cancelling, and
// executing orders, and fixed-header reports sent back to clients.
package net

import (
	"encoding/binary"
	"errors"
	"math"

	"fenrir/internal/common"
	"fenrir/internal/engine"

	"github.com/google/uuid"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short for specified trailer length")
)

type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	ExecuteOrder
	BookRequest
)

type ReportMessageType uint8

const (
	ExecutionReport ReportMessageType = iota
	ErrorReport
	BookReport
)

type Message interface {
	GetType() MessageType
}

// Message format constants. Symbol is padded/truncated to a fixed 8
// bytes on the wire; ids are variable length, trailing the fixed
// header.
const (
	BaseMessageHeaderLen = 2
	symbolWireLen        = 8

	// NewOrderMessageHeaderLen is the fixed portion of an order message
	// body (after the 2-byte type header is stripped): symbol + price +
	// quantity + side + id length, before the variable-length id.
	NewOrderMessageHeaderLen     = symbolWireLen + 8 + 8 + 1 + 1
	ExecuteOrderMessageHeaderLen = NewOrderMessageHeaderLen
	CancelOrderMessageHeaderLen  = 1
	BookRequestMessageHeaderLen  = symbolWireLen
)

// noPrice is the wire sentinel for a market order's absent limit price.
var noPrice = math.NaN()

type BaseMessage struct {
	TypeOf MessageType
}

func (m BaseMessage) GetType() MessageType { return m.TypeOf }

func ParseMessage(msg []byte) (Message, error) {
	if len(msg) < BaseMessageHeaderLen {
		return nil, ErrMessageTooShort
	}

	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	body := msg[2:]
	switch typeOf {
	case NewOrder:
		return parseOrderMessage(NewOrder, body)
	case ExecuteOrder:
		return parseOrderMessage(ExecuteOrder, body)
	case CancelOrder:
		return parseCancelOrder(body)
	case BookRequest:
		return parseBookRequest(body)
	default:
		return nil, ErrInvalidMessageType
	}
}

// OrderMessage carries a NewOrder or an ExecuteOrder request. A
// Quantity of zero on an ExecuteOrder means "run a matching round, do
// not place a new order".
type OrderMessage struct {
	BaseMessage
	Symbol   string
	Side     common.Side
	Price    *float64
	Quantity uint64
	ID       string
}

func (m *OrderMessage) Order() common.Order {
	id := m.ID
	if id == "" {
		id = uuid.New().String()
	}
	return common.Order{
		Side:     m.Side,
		Symbol:   m.Symbol,
		Quantity: int64(m.Quantity),
		Price:    m.Price,
		ID:       id,
	}
}

func parseOrderMessage(typeOf MessageType, msg []byte) (OrderMessage, error) {
	if len(msg) < NewOrderMessageHeaderLen {
		return OrderMessage{}, ErrMessageTooShort
	}

	m := OrderMessage{BaseMessage: BaseMessage{TypeOf: typeOf}}
	m.Symbol = decodeSymbol(msg[0:8])

	price := math.Float64frombits(binary.BigEndian.Uint64(msg[8:16]))
	if !math.IsNaN(price) {
		m.Price = &price
	}

	m.Quantity = binary.BigEndian.Uint64(msg[16:24])
	m.Side = common.Side(msg[24])
	idLen := int(msg[25])

	if len(msg) < NewOrderMessageHeaderLen+idLen {
		return OrderMessage{}, ErrMessageTooShort
	}
	m.ID = string(msg[26 : 26+idLen])

	return m, nil
}

func (m *OrderMessage) Serialize() []byte {
	idBytes := []byte(m.ID)
	buf := make([]byte, BaseMessageHeaderLen+NewOrderMessageHeaderLen+len(idBytes))

	binary.BigEndian.PutUint16(buf[0:2], uint16(m.GetType()))
	copy(buf[2:10], encodeSymbol(m.Symbol))

	price := noPrice
	if m.Price != nil {
		price = *m.Price
	}
	binary.BigEndian.PutUint64(buf[10:18], math.Float64bits(price))
	binary.BigEndian.PutUint64(buf[18:26], m.Quantity)
	buf[26] = byte(m.Side)
	buf[27] = uint8(len(idBytes))
	copy(buf[BaseMessageHeaderLen+NewOrderMessageHeaderLen:], idBytes)

	return buf
}

type CancelOrderMessage struct {
	BaseMessage
	ID string
}

func parseCancelOrder(msg []byte) (CancelOrderMessage, error) {
	if len(msg) < CancelOrderMessageHeaderLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	idLen := int(msg[0])
	if len(msg) < CancelOrderMessageHeaderLen+idLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	return CancelOrderMessage{
		BaseMessage: BaseMessage{TypeOf: CancelOrder},
		ID:          string(msg[1 : 1+idLen]),
	}, nil
}

func (m *CancelOrderMessage) Serialize() []byte {
	idBytes := []byte(m.ID)
	buf := make([]byte, BaseMessageHeaderLen+CancelOrderMessageHeaderLen+len(idBytes))
	binary.BigEndian.PutUint16(buf[0:2], uint16(CancelOrder))
	buf[2] = uint8(len(idBytes))
	copy(buf[3:], idBytes)
	return buf
}

type BookRequestMessage struct {
	BaseMessage
	Symbol string
}

func parseBookRequest(msg []byte) (BookRequestMessage, error) {
	if len(msg) < BookRequestMessageHeaderLen {
		return BookRequestMessage{}, ErrMessageTooShort
	}
	return BookRequestMessage{
		BaseMessage: BaseMessage{TypeOf: BookRequest},
		Symbol:      decodeSymbol(msg[0:8]),
	}, nil
}

func (m *BookRequestMessage) Serialize() []byte {
	buf := make([]byte, BaseMessageHeaderLen+BookRequestMessageHeaderLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(BookRequest))
	copy(buf[2:10], encodeSymbol(m.Symbol))
	return buf
}

func encodeSymbol(symbol string) []byte {
	buf := make([]byte, symbolWireLen)
	copy(buf, symbol)
	return buf
}

func decodeSymbol(buf []byte) string {
	end := len(buf)
	for end > 0 && buf[end-1] == 0 {
		end--
	}
	return string(buf[:end])
}

// Report is the fixed-header frame the server sends back for an
// execution, an error, or a book dump. OrderID, Err and Body are the
// variable-length trailers.
type Report struct {
	MessageType ReportMessageType
	Side        common.Side
	Quantity    uint64
	Price       float64
	Symbol      string
	OrderID     string
	Err         string
	Body        string
}

const reportFixedHeaderLen = 1 + 1 + 8 + 8 + symbolWireLen + 2 + 4 + 4

// Serialize converts the report to its wire form.
func (r *Report) Serialize() []byte {
	orderIDBytes := []byte(r.OrderID)
	errBytes := []byte(r.Err)
	bodyBytes := []byte(r.Body)

	totalSize := reportFixedHeaderLen + len(orderIDBytes) + len(errBytes) + len(bodyBytes)
	buf := make([]byte, totalSize)

	buf[0] = byte(r.MessageType)
	buf[1] = byte(r.Side)
	binary.BigEndian.PutUint64(buf[2:10], r.Quantity)
	binary.BigEndian.PutUint64(buf[10:18], math.Float64bits(r.Price))
	copy(buf[18:26], encodeSymbol(r.Symbol))
	binary.BigEndian.PutUint16(buf[26:28], uint16(len(orderIDBytes)))
	binary.BigEndian.PutUint32(buf[28:32], uint32(len(errBytes)))
	binary.BigEndian.PutUint32(buf[32:36], uint32(len(bodyBytes)))

	offset := reportFixedHeaderLen
	offset += copy(buf[offset:], orderIDBytes)
	offset += copy(buf[offset:], errBytes)
	copy(buf[offset:], bodyBytes)

	return buf
}

// ParseReport reads back a Report previously produced by Serialize.
func ParseReport(buf []byte) (Report, error) {
	if len(buf) < reportFixedHeaderLen {
		return Report{}, ErrMessageTooShort
	}

	r := Report{
		MessageType: ReportMessageType(buf[0]),
		Side:        common.Side(buf[1]),
		Quantity:    binary.BigEndian.Uint64(buf[2:10]),
		Price:       math.Float64frombits(binary.BigEndian.Uint64(buf[10:18])),
		Symbol:      decodeSymbol(buf[18:26]),
	}
	orderIDLen := int(binary.BigEndian.Uint16(buf[26:28]))
	errLen := int(binary.BigEndian.Uint32(buf[28:32]))
	bodyLen := int(binary.BigEndian.Uint32(buf[32:36]))

	trailer := buf[reportFixedHeaderLen:]
	if len(trailer) < orderIDLen+errLen+bodyLen {
		return Report{}, ErrMessageTooShort
	}

	r.OrderID = string(trailer[:orderIDLen])
	trailer = trailer[orderIDLen:]
	r.Err = string(trailer[:errLen])
	trailer = trailer[errLen:]
	r.Body = string(trailer[:bodyLen])

	return r, nil
}

// executionReports turns one matching Execution into a pair of reports,
// one for the bid fill and one for the ask fill.
func executionReports(symbol string, execution *engine.Execution) (Report, Report) {
	price := 0.0
	if execution.Price != nil {
		price = *execution.Price
	}
	bid := Report{
		MessageType: ExecutionReport,
		Side:        common.Buy,
		Quantity:    uint64(execution.Quantity),
		Price:       price,
		Symbol:      symbol,
		OrderID:     execution.BidFill.OrderID,
	}
	ask := Report{
		MessageType: ExecutionReport,
		Side:        common.Sell,
		Quantity:    uint64(execution.Quantity),
		Price:       price,
		Symbol:      symbol,
		OrderID:     execution.AskFill.OrderID,
	}
	return bid, ask
}

func errorReport(err error) Report {
	return Report{MessageType: ErrorReport, Err: err.Error()}
}

func bookReport(symbol, body string) Report {
	return Report{MessageType: BookReport, Symbol: symbol, Body: body}
}
