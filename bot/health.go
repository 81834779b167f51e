package bot

import (
	"log/slog"
	"net/http"
	"time"

	"botlibrary/metrics"
)

// StartHealthServer serves the liveness probe and the Prometheus metrics in
// the background. Hosting platforms ping "/" to keep the process alive.
func StartHealthServer(addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Bot is Alive!"))
	})
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health server stopped", "err", err)
		}
	}()
	log.Info("health server listening", "addr", addr)
}
