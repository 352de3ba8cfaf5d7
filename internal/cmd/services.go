package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/draftday/draftroom/internal/catalog"
	"github.com/draftday/draftroom/internal/dbconfig"
	"github.com/draftday/draftroom/internal/draft/autopick"
	"github.com/draftday/draftroom/internal/draft/broker"
	"github.com/draftday/draftroom/internal/draft/engine"
	"github.com/draftday/draftroom/internal/draft/gateway"
	"github.com/draftday/draftroom/internal/draft/service"
	"github.com/draftday/draftroom/internal/draft/store"
)

// Services holds every long-lived collaborator built at startup.
type Services struct {
	Catalog     *catalog.Memory
	Rosters     *service.RosterBook
	Manager     *engine.Manager
	Service     *service.Service
	Connections *gateway.ConnectionManager
	Handler     *gateway.Handler

	repo      *store.Repository
	publisher *broker.JetStreamPublisher
	consumer  *gateway.EventConsumer
}

func setupServices(ctx context.Context, cfg *Config) (*Services, error) {
	s := &Services{}

	players, err := setupCatalog(cfg)
	if err != nil {
		return nil, err
	}
	s.Catalog = players

	if cfg.Database.Enabled {
		repo, err := store.Open(dbconfig.NewConfigFromEnv())
		if err != nil {
			return nil, fmt.Errorf("setup store: %w", err)
		}
		s.repo = repo
		log.Info().Msg("connected to postgres")
	}

	s.Rosters = service.NewRosterBook()
	s.Connections = gateway.NewConnectionManager(gateway.DefaultConnectionConfig())

	broadcaster, err := s.setupBroadcasters(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	roomCfg := engine.RoomConfig{
		Catalog:            s.Catalog,
		Selector:           autopick.New(autopick.DefaultTargets()),
		Broadcaster:        broadcaster,
		Roster:             s.Rosters,
		DefaultTimePerPick: cfg.defaultTimePerPick(),
	}
	if s.repo != nil {
		roomCfg.Log = s.repo
	}
	s.Manager = engine.NewManager(ctx, roomCfg)

	var st service.Store
	if s.repo != nil {
		st = s.repo
	}
	s.Service = service.New(s.Manager, st)
	s.Handler = gateway.NewHandler(s.Service, s.Connections, s.Catalog, s.Rosters)
	return s, nil
}

func setupCatalog(cfg *Config) (*catalog.Memory, error) {
	seed := cfg.Catalog.SeedPath
	if seed == "" {
		seed = getEnv("CATALOG_SEED_PATH", "config/players.yaml")
	}
	loaded, err := catalog.LoadSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("load player catalogue: %w", err)
	}
	mem := catalog.NewMemory(loaded)
	for _, league := range cfg.Catalog.Leagues {
		mem.SetLeagueSports(league.ID, league.Sports)
	}
	log.Info().Int("players", len(loaded)).Str("path", seed).Msg("player catalogue loaded")
	return mem, nil
}

// setupBroadcasters picks the delivery path. With NATS enabled, events go
// through JetStream and come back via the durable consumer, so multiple
// gateway processes see the same stream. Without it, the local bridge feeds
// this process's WebSocket pools directly.
func (s *Services) setupBroadcasters(cfg *Config) (engine.Broadcaster, error) {
	fanout := broker.NewFanout()

	if !cfg.NATS.Enabled {
		return broker.Multi{fanout, gateway.NewLocalBridge(s.Connections)}, nil
	}

	jsCfg := broker.DefaultJetStreamConfig()
	if cfg.NATS.URL != "" {
		jsCfg.URL = cfg.NATS.URL
	}
	publisher, err := broker.NewJetStreamPublisher(jsCfg)
	if err != nil {
		return nil, fmt.Errorf("setup jetstream publisher: %w", err)
	}
	s.publisher = publisher

	consumerCfg := gateway.DefaultJetStreamConsumerConfig()
	if cfg.NATS.URL != "" {
		consumerCfg.URL = cfg.NATS.URL
	}
	consumer, err := gateway.NewEventConsumer(s.Connections, consumerCfg)
	if err != nil {
		publisher.Close()
		return nil, fmt.Errorf("setup jetstream consumer: %w", err)
	}
	s.consumer = consumer

	return broker.Multi{fanout, publisher}, nil
}

// Start launches the background workers.
func (s *Services) Start(ctx context.Context) {
	go s.Connections.Start(ctx)
	if s.consumer != nil {
		go func() {
			if err := s.consumer.Start(ctx); err != nil {
				log.Error().Err(err).Msg("event consumer stopped")
			}
		}()
	}
}

// Close tears down collaborators in reverse dependency order.
func (s *Services) Close() {
	if s.Manager != nil {
		s.Manager.Shutdown()
	}
	if s.consumer != nil {
		s.consumer.Stop()
	}
	if s.publisher != nil {
		s.publisher.Close()
	}
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}
}
