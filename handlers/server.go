package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ReZorDos/TerraWar-sub000/logging"
	"github.com/ReZorDos/TerraWar-sub000/network"
)

// Server accepts client connections and hands each one to its own ClientHandler
type Server struct {
	coordinator   *MatchCoordinator
	clientManager *ClientManager
	connOptions   network.Options
	maxLine       int
	log           *zap.Logger
	upgrader      websocket.Upgrader

	wg sync.WaitGroup
}

// NewServer wires a server around an already running coordinator
func NewServer(coordinator *MatchCoordinator, clientManager *ClientManager, opts network.Options, maxLine int) *Server {
	log := logging.OrNop(opts.Logger)
	opts.Logger = log
	return &Server{
		coordinator:   coordinator,
		clientManager: clientManager,
		connOptions:   opts,
		maxLine:       maxLine,
		log:           log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Serve accepts line-protocol connections from ln until ctx is done.
// On return every connection has been closed and its handler has finished.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	defer s.shutdown()

	s.log.Info("listening", zap.String("addr", ln.Addr().String()))
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.Warn("accept failed", zap.Error(err))
				continue
			}
			return err
		}
		s.handle(ctx, network.NewLineTransport(conn, s.maxLine))
	}
}

// ServeHTTP upgrades the request to a WebSocket carrying the same envelopes, one per frame
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("failed to upgrade connection", zap.Error(err))
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()
	conn := network.NewConnection(network.NewWSTransport(ws), s.connOptions)
	HandleClientConnection(r.Context(), conn, s.coordinator, s.clientManager)
}

func (s *Server) handle(ctx context.Context, t network.Transport) {
	conn := network.NewConnection(t, s.connOptions)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		HandleClientConnection(ctx, conn, s.coordinator, s.clientManager)
	}()
}

func (s *Server) shutdown() {
	s.clientManager.CloseAll()
	s.wg.Wait()
}
