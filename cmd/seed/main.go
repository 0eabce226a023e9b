package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meur/guideforge/internal/config"
	"github.com/meur/guideforge/internal/logger"
	"github.com/meur/guideforge/internal/models"
	"github.com/meur/guideforge/internal/refdata"
	"github.com/meur/guideforge/internal/storage"
)

// seed fills the reference catalog from hakush.in dumps on disk, for
// deployments that cannot reach the data API.
func main() {
	dbPath := flag.String("db", "./guideforge.db", "SQLite database path")
	dataDir := flag.String("data", "./seeds", "Directory holding character.json, weapon.json and equipment.json")
	iconURL := flag.String("icon-url", config.DefaultIconURL, "Icon URL template")
	flag.Parse()

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := storage.New(*dbPath)
	if err != nil {
		log.Fatal("failed to open database", "path", *dbPath, "error", err)
	}
	defer store.Close()

	failed := 0
	for _, kind := range models.ReferenceKinds() {
		n, err := seedCatalog(store, *dataDir, kind, *iconURL)
		if err != nil {
			failed++
			log.Warn("failed to seed catalog", "kind", kind, "error", err)
			continue
		}
		log.Info("seeded catalog", "kind", kind, "entries", n)
	}

	if failed > 0 {
		log.Error("seeding incomplete", "failed", failed)
		log.Sync()
		os.Exit(1)
	}
	log.Info("seeding complete", "db", *dbPath)
}

func seedCatalog(store *storage.Store, dir string, kind models.ReferenceKind, iconURL string) (int, error) {
	file, ok := refdata.Endpoint(kind)
	if !ok {
		return 0, fmt.Errorf("no catalog file for %s", kind)
	}
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return 0, err
	}

	entries, err := refdata.Parse(kind, data, iconURL)
	if err != nil {
		return 0, err
	}
	if err := store.ReplaceEntries(kind, entries, time.Now()); err != nil {
		return 0, err
	}
	return len(entries), nil
}
