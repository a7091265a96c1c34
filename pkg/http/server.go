package http

import (
	"context"

	"github.com/lintang-b-s/macrotracking/pkg/config"
	http_router "github.com/lintang-b-s/macrotracking/pkg/http/router"
	"github.com/lintang-b-s/macrotracking/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/macrotracking/pkg/http/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use serves the report api until ctx is cancelled or the listener fails.
func (s *Server) Use(
	ctx context.Context,
	cfg config.ServerConfig,
	traceService controllers.TraceService,
) error {
	serverConfig := http_server.Config{
		Port:    cfg.Port,
		Timeout: cfg.Timeout,
	}

	api := http_router.NewAPI(s.Log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Run(ctx, serverConfig, traceService)
	})

	return g.Wait()
}
