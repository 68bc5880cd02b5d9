/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/tomoncle/bakery/utils"
)

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the bakery HTTP API.
type Server struct {
	http   *http.Server
	logger *utils.Logger
	opts   ServerOptions
	addr   net.Addr
}

// NewServer wraps handler in an http.Server. Nothing listens until Start.
func NewServer(handler http.Handler, opts ServerOptions) *Server {
	if opts.Addr == "" {
		opts.Addr = ":5555"
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.ReadHeaderTimeout == 0 {
		opts.ReadHeaderTimeout = 5 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 15 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	logger := utils.NewLogger("SERVER")
	return &Server{
		logger: logger,
		opts:   opts,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       opts.IdleTimeout,
			BaseContext: func(net.Listener) context.Context {
				return context.Background()
			},
		},
	}
}

// Start binds the listen address and serves in a background goroutine.
// Bind failures are returned; serve failures arrive on the channel, which
// is closed once serving stops.
func (s *Server) Start() (<-chan error, error) {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return nil, err
	}

	s.addr = ln.Addr()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		s.logger.WithField("addr", ln.Addr().String()).Info("HTTP server listening")
		if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("HTTP server stopped unexpectedly")
			errCh <- err
		}
	}()
	return errCh, nil
}

// Addr is the bound address once Start has succeeded, else the configured one.
func (s *Server) Addr() string {
	if s.addr != nil {
		return s.addr.String()
	}
	return s.http.Addr
}

// Stop gracefully shuts down the server, waiting up to ShutdownTimeout.
func (s *Server) Stop(ctx context.Context) error {
	if s.opts.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ShutdownTimeout)
		defer cancel()
	}
	err := s.http.Shutdown(ctx)
	if err == nil {
		s.logger.Info("HTTP server stopped")
	}
	return err
}
