package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/mytheresa/category-service/app/api"
	"github.com/mytheresa/category-service/app/categories"
	"github.com/mytheresa/category-service/app/config"
	"github.com/mytheresa/category-service/app/middleware"
	"github.com/mytheresa/category-service/app/telemetry"
	"github.com/mytheresa/category-service/models"
)

// NewHandler wires the category routes and health check over db.
func NewHandler(cfg config.Config, db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	categoryHandler := categories.NewCategoryHandler(models.NewCategoriesRepository(db))
	categoryHandler.Register(mux, cfg.APIPrefix)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			log.Printf("healthz: %v", err)
			api.WriteError(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	accessLog := log.New(os.Stdout, "http: ", log.LstdFlags)
	var handler http.Handler = mux
	handler = middleware.Recover(accessLog, handler)
	handler = middleware.Logger(accessLog, handler)
	return telemetry.Handler(handler, "category-service")
}

// Run serves handler on cfg.HTTPAddr until ctx is cancelled, then shuts
// down gracefully within cfg.ShutdownTimeout.
func Run(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
