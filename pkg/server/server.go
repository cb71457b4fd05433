package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second

	writeTimeoutMargin = time.Minute
)

// Server は Handler を HTTP で公開します。
type Server struct {
	handler      *Handler
	writeTimeout time.Duration
	httpSrv      *http.Server
}

// New は requestTimeout に余裕を持たせた書き込みタイムアウトで Server を初期化します。
func New(handler *Handler, requestTimeout time.Duration) (*Server, error) {
	if handler == nil {
		return nil, errors.New("handler は必須です")
	}
	return &Server{
		handler:      handler,
		writeTimeout: writeTimeoutFor(requestTimeout),
	}, nil
}

// writeTimeoutFor は生成のタイムアウトが無効な場合は書き込みタイムアウトも無効にします。
func writeTimeoutFor(requestTimeout time.Duration) time.Duration {
	if requestTimeout <= 0 {
		return 0
	}
	return requestTimeout + writeTimeoutMargin
}

// Serve は ctx がキャンセルされるまでリクエストを処理し、その後グレースフルに停止します。
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	mux := http.NewServeMux()
	s.handler.Register(mux)

	s.httpSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      s.writeTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("サーバーの停止に失敗しました", "error", err)
		}
	}()

	slog.Info("HTTPサーバーを起動しました", "address", listener.Addr().String())
	if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTPサーバーが異常終了しました: %w", err)
	}
	return nil
}
