package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"fenrir/internal/engine"
	"fenrir/internal/workerpool"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const (
	maxRecvSize      = 4 * 1024
	defaultNWorkers  = 10
	defaultConnTimeout = 30 * time.Second
)

var (
	ErrImproperConversion = errors.New("improper type conversion")
	ErrClientDoesNotExist = errors.New("client does not exist")
)

// Broadcaster is notified of every Execution the market produces, so
// it can fan it out to market-data subscribers. Implemented by
// internal/marketdata.Hub.
type Broadcaster interface {
	Publish(symbol string, execution *engine.Execution)
}

// Recorder is notified of every placed/cancelled order and produced
// execution, so it can update exported metrics. Implemented by
// internal/metrics.Collector.
type Recorder interface {
	RecordPlace(symbol string)
	RecordCancel(symbol string)
	RecordExecution(symbol string, execution *engine.Execution)
}

type clientSession struct {
	conn net.Conn
}

type clientMessage struct {
	clientAddress string
	message       Message
}

// Server is a TCP front end for a Market: it decodes wire messages
// into Market calls and writes back Reports.
type Server struct {
	address string
	port    int
	market  *engine.Market

	broadcaster Broadcaster
	recorder    Recorder

	pool               *workerpool.Pool[net.Conn]
	cancel             context.CancelFunc
	clientSessions     map[string]clientSession
	clientSessionsLock sync.Mutex
	clientMessages     chan clientMessage
}

func New(address string, port int, market *engine.Market) *Server {
	return &Server{
		address:        address,
		port:           port,
		market:         market,
		pool:           workerpool.New[net.Conn](defaultNWorkers),
		clientSessions: make(map[string]clientSession),
		clientMessages: make(chan clientMessage, 1),
	}
}

// WithBroadcaster attaches a market-data broadcaster; every execution
// the server produces is also published to it.
func (s *Server) WithBroadcaster(b Broadcaster) *Server {
	s.broadcaster = b
	return s
}

// WithRecorder attaches a metrics recorder.
func (s *Server) WithRecorder(r Recorder) *Server {
	s.recorder = r
	return s
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run blocks, serving TCP connections until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return fmt.Errorf("starting listener: %w", err)
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})
	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Str("address", listener.Addr().String()).Msg("server listening")

	for {
		select {
		case <-ctx.Done():
			return t.Wait()
		default:
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return t.Wait()
				}
				log.Error().Err(err).Msg("error accepting client")
				continue
			}

			log.Info().Str("address", conn.RemoteAddr().String()).Msg("client connected")
			s.addClientSession(conn)
			s.pool.AddTask(conn)
		}
	}
}

func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case message := <-s.clientMessages:
			if err := s.handleMessage(message); err != nil {
				log.Error().Err(err).Str("clientAddress", message.clientAddress).Msg("error handling message")
				s.reportTo(message.clientAddress, errorReport(err))
			}
		}
	}
}

func (s *Server) handleMessage(message clientMessage) error {
	switch m := message.message.(type) {
	case OrderMessage:
		return s.handleOrderMessage(message.clientAddress, m)
	case CancelOrderMessage:
		return s.handleCancel(message.clientAddress, m)
	case BookRequestMessage:
		return s.handleBookRequest(message.clientAddress, m)
	default:
		log.Error().Any("message", message.message).Msg("invalid message type")
		return ErrInvalidMessageType
	}
}

func (s *Server) handleOrderMessage(clientAddress string, m OrderMessage) error {
	switch m.GetType() {
	case NewOrder:
		order := m.Order()
		if err := s.market.Place(order); err != nil {
			return err
		}
		if s.recorder != nil {
			s.recorder.RecordPlace(order.Symbol)
		}
		return nil
	case ExecuteOrder:
		return s.handleExecute(clientAddress, m)
	default:
		return ErrInvalidMessageType
	}
}

func (s *Server) handleExecute(clientAddress string, m OrderMessage) error {
	var executions []*engine.Execution
	var err error

	if m.Quantity == 0 {
		product := s.market.GetProduct(m.Symbol)
		if product == nil {
			return nil
		}
		executions, err = product.Execute(nil)
	} else {
		order := m.Order()
		executions, err = s.market.Execute(&order)
	}
	if err != nil {
		return err
	}

	for _, execution := range executions {
		if s.broadcaster != nil {
			s.broadcaster.Publish(m.Symbol, execution)
		}
		if s.recorder != nil {
			s.recorder.RecordExecution(m.Symbol, execution)
		}
		bidReport, askReport := executionReports(m.Symbol, execution)
		s.reportTo(clientAddress, bidReport)
		s.reportTo(clientAddress, askReport)
	}
	return nil
}

func (s *Server) handleCancel(clientAddress string, m CancelOrderMessage) error {
	order, ok := s.market.GetOrderByID(m.ID)
	if !ok {
		return engine.ErrNoSuchOrderID
	}
	if err := s.market.CancelOrder(m.ID); err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.RecordCancel(order.Symbol)
	}
	return nil
}

func (s *Server) handleBookRequest(clientAddress string, m BookRequestMessage) error {
	product := s.market.GetProduct(m.Symbol)
	if product == nil {
		return engine.ErrNoSuchOrderID
	}
	s.reportTo(clientAddress, bookReport(m.Symbol, product.FormatOrderBook()))
	return nil
}

func (s *Server) reportTo(clientAddress string, report Report) {
	s.clientSessionsLock.Lock()
	session, ok := s.clientSessions[clientAddress]
	s.clientSessionsLock.Unlock()
	if !ok {
		return
	}

	if _, err := session.conn.Write(report.Serialize()); err != nil {
		log.Error().Err(err).Str("clientAddress", clientAddress).Msg("unable to send report")
		s.deleteClientSession(clientAddress)
	}
}

// handleConnection reads the next message off conn, decodes it, and
// hands it to sessionHandler. The connection is requeued for its next
// message unless it has died.
func (s *Server) handleConnection(t *tomb.Tomb, conn net.Conn) error {
	if err := conn.SetReadDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Err(err).Msg("failed setting read deadline")
		s.deleteClientSession(conn.RemoteAddr().String())
		return nil
	}

	buffer := make([]byte, maxRecvSize)
	select {
	case <-t.Dying():
		return nil
	default:
	}

	n, err := conn.Read(buffer)
	if err != nil {
		s.deleteClientSession(conn.RemoteAddr().String())
		return nil
	}

	message, err := ParseMessage(buffer[:n])
	if err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error parsing message")
		s.reportTo(conn.RemoteAddr().String(), errorReport(err))
		s.pool.AddTask(conn)
		return nil
	}

	s.clientMessages <- clientMessage{
		message:       message,
		clientAddress: conn.RemoteAddr().String(),
	}
	s.pool.AddTask(conn)
	return nil
}

func (s *Server) addClientSession(conn net.Conn) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()
	s.clientSessions[conn.RemoteAddr().String()] = clientSession{conn: conn}
}

func (s *Server) deleteClientSession(address string) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()
	delete(s.clientSessions, address)
}
