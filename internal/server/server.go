package server

import (
	"net"
	"strconv"
	"time"

	"github.com/pichat-dev/pichat-go-server/internal/api"
	"github.com/pichat-dev/pichat-go-server/internal/logger"
	"github.com/pichat-dev/pichat-go-server/internal/registry"
)

var sem = make(chan struct{}, 10000)

// Server accepts chat connections and hands each one to its own worker.
type Server struct {
	api            *api.API
	reg            *registry.Registry
	silenceTimeout time.Duration
	haltInterval   time.Duration
}

func NewServer(a *api.API, reg *registry.Registry, silenceTimeout, haltInterval time.Duration) *Server {
	return &Server{
		api:            a,
		reg:            reg,
		silenceTimeout: silenceTimeout,
		haltInterval:   haltInterval,
	}
}

func (s *Server) Start(port int) {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		logger.FatalF("Chat server start error: %v", err)
		return
	}
	logger.InfoF("Chat server listen on " + ln.Addr().String())
	defer func() {
		err := ln.Close()
		if err != nil {
			logger.ErrorF("Server close error: %v", err)
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.ErrorF("Accept connection error: %v", err)
			continue
		}

		connID := conn.RemoteAddr().String()
		logger.InfoF("New connection: %s", connID)

		uid := s.reg.AddClient(connID)
		handler := newConnectionHandler(conn, connID, uid, s.api, s.reg, s.silenceTimeout, s.haltInterval)

		sem <- struct{}{}
		go func() {
			handler.handleConnection()
			<-sem
		}()
	}
}
