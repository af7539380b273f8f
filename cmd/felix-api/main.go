package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/felix-companion/felix-agent/internal/adapters/http"
	firestorestore "github.com/felix-companion/felix-agent/internal/adapters/storage/firestore"
	memstore "github.com/felix-companion/felix-agent/internal/adapters/storage/memory"
	sqlitestore "github.com/felix-companion/felix-agent/internal/adapters/storage/sqlite"
	"github.com/felix-companion/felix-agent/internal/app/conversation"
	"github.com/felix-companion/felix-agent/internal/app/profile"
	"github.com/felix-companion/felix-agent/internal/app/resources"
	"github.com/felix-companion/felix-agent/internal/config"
	"github.com/felix-companion/felix-agent/internal/domain"
	"github.com/felix-companion/felix-agent/internal/observability"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load("")
	if err != nil {
		observability.Logger().Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	observability.SetLevel(cfg.LogLevel)
	log := observability.Logger()

	var (
		convStore     domain.ConversationStore
		msgStore      domain.MessageStore
		profileStore  domain.ProfileStore
		moodStore     domain.MoodStore
		resourceStore domain.ResourceStore
	)

	switch cfg.StorageBackend {
	case "firestore":
		log.Info("using firestore storage", "project", cfg.GCPProjectID)
		store, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Error("initializing firestore store", "error", err)
			os.Exit(1)
		}
		convStore, msgStore, profileStore, moodStore, resourceStore = store, store, store, store, store

	case "sqlite":
		log.Info("using sqlite storage", "path", cfg.SQLitePath)
		store, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			log.Error("initializing sqlite store", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		seed, _ := memstore.NewResourceStore().ListResources()
		if err := store.SeedResources(seed); err != nil {
			log.Error("seeding resources", "error", err)
			os.Exit(1)
		}
		convStore, msgStore, profileStore, moodStore, resourceStore = store, store, store, store, store

	default:
		log.Info("using in-memory storage")
		convStore = memstore.NewConversationStore()
		msgStore = memstore.NewMessageStore()
		profileStore = memstore.NewProfileStore()
		moodStore = memstore.NewMoodStore()
		resourceStore = memstore.NewResourceStore()
	}

	convSvc := conversation.NewService(convStore, msgStore, cfg.ReplyDelay())
	defer convSvc.Close()
	profileSvc := profile.NewService(profileStore, moodStore)
	resourceSvc := resources.NewService(resourceStore)

	handler := httpadapter.NewServer(convSvc, profileSvc, resourceSvc)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		log.Info("felix api listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
