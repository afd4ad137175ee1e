package events

import (
	"bufio"
	"errors"
	"log"
	"net"
)

// Server accepts raw TCP subscribers for the event feed. Clients get a
// welcome line and then receive every broadcast until they disconnect.
type Server struct {
	addr string
	hub  *Hub
	ln   net.Listener
}

func NewServer(addr string, hub *Hub) *Server {
	return &Server{addr: addr, hub: hub}
}

func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	log.Printf("[events] tcp feed listening on %s", s.addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	s.hub.Add(conn)
	s.hub.Welcome(conn)

	// drain until the peer hangs up
	r := bufio.NewReader(conn)
	for {
		if _, err := r.ReadString('\n'); err != nil {
			break
		}
	}
	s.hub.Remove(conn)
}

func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
