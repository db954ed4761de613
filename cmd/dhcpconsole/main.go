package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dhcpconsole/internal/backend"
	"dhcpconsole/internal/catalog"
	"dhcpconsole/internal/config"
	"dhcpconsole/internal/controller"
	"dhcpconsole/internal/events"
	"dhcpconsole/internal/notify"
	"dhcpconsole/internal/reconcile"
	"dhcpconsole/internal/web"
)

const (
	configFile = "dhcpconsole.ini"
)

var (
	sha1ver   string
	buildTime string
	repoName  string
)

func main() {
	log.Printf("%s: Build %s, Time %s", repoName, sha1ver, buildTime)

	// Load configuration
	cfg, err := config.New(configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	loc, _ := cfg.Location()

	// Load the classification catalogue
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	store := catalog.NewStore(catalog.LoadOrEmpty(ctx, cfg.CatalogFile, &http.Client{Timeout: cfg.Timeout()}))
	cancel()

	// Event hub for connected consoles
	hub := events.NewHub()
	go hub.Run()
	broadcaster := events.NewBroadcaster(hub)

	var watcher *catalog.Watcher
	if cfg.WatchCatalog {
		watcher, err = catalog.NewWatcher(store, cfg.CatalogFile)
		if err != nil {
			log.Printf("Warning: not watching catalogue: %v", err)
		} else {
			watcher.OnReload(func(cat *catalog.Catalogue) {
				broadcaster.BroadcastCatalogueChanged(cat.Len())
			})
			if err := watcher.Start(); err != nil {
				log.Printf("Warning: failed to watch catalogue: %v", err)
				watcher = nil
			}
		}
	}

	// Initialize controller
	center := notify.NewCenter(cfg.NotificationLimit, broadcaster)
	ctrl := controller.New(backend.NewClient(cfg.APIBase, cfg.Timeout()), controller.Options{
		RefreshInterval: cfg.Interval(),
		Reconciler:      reconcile.New(store.Current, loc),
		Notifier:        center,
	})

	ctx, cancel = context.WithTimeout(context.Background(), 2*cfg.Timeout())
	if err := ctrl.LoadAll(ctx); err != nil {
		log.Printf("Warning: initial load incomplete: %v", err)
	}
	cancel()

	if err := ctrl.Start(); err != nil {
		log.Fatalf("Failed to start background refresh: %v", err)
	}

	// Initialize web server
	webServer := web.NewServer(cfg, ctrl, center, hub)
	go func() {
		if err := webServer.Start(); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")

	ctrl.Stop()
	if watcher != nil {
		watcher.Stop()
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := webServer.Shutdown(ctx); err != nil {
		log.Printf("Warning: HTTP shutdown: %v", err)
	}
	hub.Stop()
}
