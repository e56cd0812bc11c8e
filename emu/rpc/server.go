// Package rpc exposes the controls of a running emulator over net/rpc.
package rpc

import (
	"net"
	"net/rpc"

	"nescore/emu/log"
)

var modRPC = log.NewModule("rpc")

// Emu is the set of emulator controls that can be called remotely. They must
// be safe for concurrent use.
type Emu interface {
	Reset()
	Restart()
	SetPause(pause bool)
	Stop()
	Frames() int64
}

type emuProxy struct {
	emu Emu
}

func (ep *emuProxy) Reset(_, _ *struct{}) error          { ep.emu.Reset(); return nil }
func (ep *emuProxy) Restart(_, _ *struct{}) error        { ep.emu.Restart(); return nil }
func (ep *emuProxy) Stop(_ *struct{}, _ *struct{}) error { ep.emu.Stop(); return nil }

func (ep *emuProxy) SetPause(pause bool, _ *struct{}) error {
	modRPC.Debugf("set pause: %t", pause)
	ep.emu.SetPause(pause)
	return nil
}

func (ep *emuProxy) Frames(_ *struct{}, reply *int64) error {
	*reply = ep.emu.Frames()
	return nil
}

type Server struct {
	l net.Listener
}

// NewServer serves the emu controls on the TCP address addr.
func NewServer(addr string, emu Emu) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("emu", &emuProxy{emu: emu}); err != nil {
		return nil, err
	}

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	modRPC.InfoZ("rpc server listening").String("addr", l.Addr().String()).End()
	go srv.Accept(l)
	return &Server{l: l}, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() net.Addr { return s.l.Addr() }

func (s *Server) Close() error { return s.l.Close() }
