package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/macrotracking/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/macrotracking/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/macrotracking/pkg/http/server"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

// Handler builds the report api: /api/traces/... and the /healthz heartbeat.
func (api *API) Handler(traceService controllers.TraceService) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	group := router_helper.NewRouteGroup(router, "/api")
	controllers.New(traceService, api.log).Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, api.recoverPanic, Heartbeat("healthz"), Logger(api.log)}
	return alice.New(mwChain...).Then(router)
}

// Run serves the api until ctx is cancelled or the server fails.
func (api *API) Run(ctx context.Context, config http_server.Config, traceService controllers.TraceService) error {
	srv := http_server.New(ctx, api.Handler(traceService), config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		api.log.Info("HTTP server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		_ = srv.Shutdown(context.Background())
		return nil
	}
}
