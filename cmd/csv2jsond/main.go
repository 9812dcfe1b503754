package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"csv2json/internal/assets"
	"csv2json/internal/config"
	"csv2json/internal/store"
	"csv2json/internal/web"
)

func main() {
	addr := flag.String("addr", "", "Listen address (default from CSV2JSON_ADDR)")
	profilePath := flag.String("config", "", "Conversion profile (.json or .yaml)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if *profilePath != "" {
		p, err := config.LoadProfile(*profilePath)
		if err != nil {
			log.Fatalf("profile load error: %v", err)
		}
		cfg.Apply(p)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	defaults, err := cfg.ConvertOptions()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := assets.NewWorker(assets.NewStorage(), assets.Static())
	if err := worker.Install(); err != nil {
		log.Fatalf("assets: %v", err)
	}
	if evicted := worker.Activate(); len(evicted) > 0 {
		log.Printf("assets: evicted %v", evicted)
	}
	log.Printf("assets: %s ready (%d entries)", worker.Name, len(worker.Manifest))

	var history web.History
	st, err := store.Open(ctx, cfg)
	switch {
	case errors.Is(err, store.ErrDisabled):
		log.Printf("history: disabled (no DB_DRIVER)")
	case err != nil:
		log.Fatalf("history: %v", err)
	default:
		defer st.Close()
		history = st
		log.Printf("history: using %s", cfg.DBDriver)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewServer(defaults, worker, history, cfg.MaxBody).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 csv2json listening on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("http: shutdown: %v", err)
		}
		log.Println("✅ server stopped")
	}
}
