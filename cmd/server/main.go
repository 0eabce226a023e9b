package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meur/guideforge/internal/api"
	"github.com/meur/guideforge/internal/config"
	"github.com/meur/guideforge/internal/editor"
	"github.com/meur/guideforge/internal/logger"
	"github.com/meur/guideforge/internal/refdata"
	"github.com/meur/guideforge/internal/schema"
	"github.com/meur/guideforge/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger is configured from the environment too
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	// Parse flags
	port := flag.String("port", cfg.Port, "Server port")
	dbPath := flag.String("db", cfg.CatalogDB, "SQLite reference catalog path")
	flag.Parse()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize storage
	store, err := storage.New(*dbPath)
	if err != nil {
		log.Fatal("Failed to initialize storage", "err", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: cfg.FetchTimeout}

	// The editor works without the schema; validation tightens once it loads.
	validator := schema.New(cfg.SchemaURL, httpClient, log.With("component", "schema"))
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
		defer cancel()
		if err := validator.Load(loadCtx); err != nil {
			log.Warn("Schema validation disabled until reload", "err", err)
		}
	}()

	client := refdata.NewClient(cfg.RefdataURL, cfg.IconURL, httpClient, log.With("component", "refdata"))
	catalog := refdata.NewCatalog(client, store, log.With("component", "catalog"))

	sessions := editor.NewManager(validator, cfg.SessionTTL, log.With("component", "sessions"))
	go sessions.Run(ctx, sweepInterval(cfg.SessionTTL))

	// Create router
	srv := api.New(sessions, validator, catalog, log, api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		IconTemplate:   cfg.IconURL,
		FetchTimeout:   cfg.FetchTimeout,
	})

	// Serve frontend static files (for production deployment)
	filesDir := cfg.StaticDir
	if !filepath.IsAbs(filesDir) {
		workDir, _ := os.Getwd()
		filesDir = filepath.Join(workDir, filesDir)
	}
	FileServer(srv.Router(), "/", http.Dir(filesDir))

	httpServer := &http.Server{
		Addr:              ":" + *port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("GuideForge API starting", "url", "http://localhost:"+*port, "catalog", *dbPath, "schema", cfg.SchemaURL)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Server failed", "err", err)
	}
}

// sweepInterval checks for idle sessions a few times per TTL.
func sweepInterval(ttl time.Duration) time.Duration {
	if d := ttl / 4; d > time.Minute {
		return d
	}
	return time.Minute
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", 301).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, req)
	})
}
