package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/choc763-lab/chocbear2/internal/session"
	"github.com/choc763-lab/chocbear2/internal/ws"
)

func SetupRoutes(sess *session.Session, log *zap.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/state", StateSnapshot(sess))
	r.Get("/ws", ws.Handler(sess, log, allowedOrigins))

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	})
	return c.Handler(r)
}
