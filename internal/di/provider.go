package di

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/LeJamon/goLPLockd/internal/config"
	"github.com/LeJamon/goLPLockd/internal/events"
	"github.com/LeJamon/goLPLockd/internal/metrics"
	"github.com/LeJamon/goLPLockd/internal/node"
	"github.com/LeJamon/goLPLockd/internal/storage/database"
	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb"
	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb/sqldb"
)

// Provider configures and registers services in the container.
type Provider struct {
	container *Container
	config    *config.Config
}

// NewProvider creates a new service provider.
func NewProvider(container *Container, cfg *config.Config) *Provider {
	return &Provider{
		container: container,
		config:    cfg,
	}
}

// RegisterAll registers all services.
func (p *Provider) RegisterAll() error {
	p.container.Register(ServiceConfig, p.config)

	p.registerDiagnosticsBuilders()
	p.registerStorageBuilders()
	p.registerNodeBuilders()

	return nil
}

func (p *Provider) registerDiagnosticsBuilders() {
	p.container.RegisterBuilder(ServiceLogger, func(c *Container) (interface{}, error) {
		logger, closer, err := p.config.Log.NewLogger()
		if err != nil {
			return nil, err
		}
		c.OnClose(ServiceLogger, closer.Close)
		return logger, nil
	})

	p.container.RegisterBuilder(ServiceMetrics, func(c *Container) (interface{}, error) {
		m := metrics.New(prometheus.NewRegistry())
		if path := p.config.Metrics.Textfile; path != "" {
			c.OnClose(ServiceMetrics, func() error { return m.WriteTextfile(path) })
		}
		return m, nil
	})
}

func (p *Provider) registerStorageBuilders() {
	p.container.RegisterBuilder(ServiceStateDB, func(c *Container) (interface{}, error) {
		db, closer, err := node.OpenDatabase(p.config.Database.Backend, p.config.Database.Path)
		if err != nil {
			return nil, err
		}
		c.OnClose(ServiceStateDB, closer.Close)
		return db, nil
	})

	// The journal is optional; a nil *relationaldb.Manager means disabled.
	p.container.RegisterBuilder(ServiceJournal, func(c *Container) (interface{}, error) {
		if !p.config.Journal.Enabled {
			return (*relationaldb.Manager)(nil), nil
		}
		logger, err := p.Logger()
		if err != nil {
			return nil, err
		}
		m, err := p.Metrics()
		if err != nil {
			return nil, err
		}

		cfg, err := p.config.Journal.Relational()
		if err != nil {
			return nil, err
		}
		if cfg.Driver == relationaldb.DriverSQLite && cfg.Database != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
				return nil, fmt.Errorf("create journal directory: %w", err)
			}
		}
		repo, err := sqldb.NewRepositoryManager(cfg)
		if err != nil {
			return nil, err
		}
		journal := relationaldb.NewManager(repo, cfg,
			relationaldb.WithLogger(logger),
			relationaldb.WithMetrics(m),
		)
		if err := journal.Open(context.Background()); err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		c.OnClose(ServiceJournal, func() error { return journal.Close(context.Background()) })
		return journal, nil
	})

	p.container.RegisterBuilder(ServiceEventPublisher, func(c *Container) (interface{}, error) {
		if !p.config.Events.Enabled {
			return events.Publisher(events.Nop{}), nil
		}
		pub, err := events.NewNATSPublisher(p.config.Events.NATS())
		if err != nil {
			return nil, err
		}
		return events.Publisher(pub), nil
	})
}

func (p *Provider) registerNodeBuilders() {
	p.container.RegisterBuilder(ServiceNode, func(c *Container) (interface{}, error) {
		cfg, err := p.NodeConfig()
		if err != nil {
			return nil, err
		}

		dbSvc, err := c.Get(ServiceStateDB)
		if err != nil {
			return nil, err
		}
		m, err := p.Metrics()
		if err != nil {
			return nil, err
		}
		pubSvc, err := c.Get(ServiceEventPublisher)
		if err != nil {
			return nil, err
		}
		opts := []node.Option{
			node.WithMetrics(m),
			node.WithPublisher(pubSvc.(events.Publisher)),
		}

		journal, err := p.Journal()
		if err != nil {
			return nil, err
		}
		if journal != nil {
			opts = append(opts, node.WithJournal(journal))
		}

		n, err := node.New(dbSvc.(database.DB), cfg, opts...)
		if err != nil {
			return nil, err
		}
		c.OnClose(ServiceNode, n.Close)
		return n, nil
	})
}

// NodeConfig maps the configuration onto the node settings.
func (p *Provider) NodeConfig() (node.Config, error) {
	programID, err := p.config.ProgramID()
	if err != nil {
		return node.Config{}, err
	}
	ammID, err := p.config.AMMProgramID()
	if err != nil {
		return node.Config{}, err
	}
	logger, err := p.Logger()
	if err != nil {
		return node.Config{}, err
	}
	return node.Config{
		ProgramID:       programID,
		AMMProgramID:    ammID,
		MinLockAmount:   p.config.Lock.MinAmount,
		MaxLockDuration: p.config.Lock.MaxDuration,
		TradeFeeRate:    p.config.Pool.TradeFeeRate,
		ProtocolFeeRate: p.config.Pool.ProtocolFeeRate,
		FundFeeRate:     p.config.Pool.FundFeeRate,
		Store:           p.config.Database.StoreConfig(),
		Logger:          logger,
	}, nil
}

// Node returns the node from the container.
func (p *Provider) Node() (*node.Node, error) {
	svc, err := p.container.Get(ServiceNode)
	if err != nil {
		return nil, err
	}
	return svc.(*node.Node), nil
}

// Journal returns the journal, nil when it is disabled.
func (p *Provider) Journal() (*relationaldb.Manager, error) {
	svc, err := p.container.Get(ServiceJournal)
	if err != nil {
		return nil, err
	}
	return svc.(*relationaldb.Manager), nil
}

// Logger returns the configured logger.
func (p *Provider) Logger() (*slog.Logger, error) {
	svc, err := p.container.Get(ServiceLogger)
	if err != nil {
		return nil, err
	}
	return svc.(*slog.Logger), nil
}

// Metrics returns the metrics registry.
func (p *Provider) Metrics() (*metrics.Metrics, error) {
	svc, err := p.container.Get(ServiceMetrics)
	if err != nil {
		return nil, err
	}
	return svc.(*metrics.Metrics), nil
}

// GetConfig returns the configuration from the container.
func (p *Provider) GetConfig() *config.Config {
	return p.config
}
