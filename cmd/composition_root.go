package cmd

import (
	"fmt"
	"log/slog"

	httpin "tracker/internal/adapters/in/http"
	natsin "tracker/internal/adapters/in/natsbus"
	natsout "tracker/internal/adapters/out/natsbus"
	"tracker/internal/adapters/out/ors"
	"tracker/internal/adapters/out/postgres"
	"tracker/internal/adapters/out/routecache"
	"tracker/internal/core/application/simulation"
	"tracker/internal/core/application/usecases/commands"
	"tracker/internal/core/application/usecases/queries"
	"tracker/internal/core/domain/services"
	"tracker/internal/core/ports"
	"tracker/internal/jobs"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters, the simulation engine and use case
// handlers together. Built once at startup.
type CompositionRoot struct {
	config Config
	logger *slog.Logger

	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	publisher *natsout.Publisher
	relay     *natsin.Relay
	routes    ports.RouteProvider
	engine    *simulation.Engine
}

// NewCompositionRoot builds the object graph from the given configuration
// and already-open infrastructure connections.
func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	natsConn *nats.Conn,
	logger *slog.Logger,
) (*CompositionRoot, error) {
	uowFactory := postgres.NewGormUnitOfWorkFactory(gormDB)

	motion, err := services.NewMotionService(config.Epsilon, config.StepSize, nil)
	if err != nil {
		return nil, fmt.Errorf("motion service: %w", err)
	}

	publisher, err := natsout.NewPublisher(natsConn, config.EventTopic)
	if err != nil {
		return nil, fmt.Errorf("event publisher: %w", err)
	}

	engine, err := simulation.NewEngine(uowFactory, publisher, motion, logger)
	if err != nil {
		return nil, fmt.Errorf("simulation engine: %w", err)
	}

	relay, err := natsin.NewRelay(natsConn, config.EventTopic, logger)
	if err != nil {
		return nil, fmt.Errorf("event relay: %w", err)
	}

	var cache ports.RouteCache
	if config.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		cache, err = routecache.NewRedisRouteCache(client, config.RouteCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("route cache: %w", err)
		}
	}

	routes, err := ors.NewRouteProvider(config.OrsAPIKey, config.OrsBaseURL, cache, logger)
	if err != nil {
		return nil, fmt.Errorf("route provider: %w", err)
	}

	return &CompositionRoot{
		config:     config,
		logger:     logger,
		gormDB:     gormDB,
		uowFactory: uowFactory,
		publisher:  publisher,
		relay:      relay,
		routes:     routes,
		engine:     engine,
	}, nil
}

// Engine exposes the simulation engine for startup restore and activity checks.
func (c *CompositionRoot) Engine() *simulation.Engine {
	return c.engine
}

// Relay exposes the event relay for startup and shutdown.
func (c *CompositionRoot) Relay() *natsin.Relay {
	return c.relay
}

// Publisher exposes the event publisher for shutdown draining.
func (c *CompositionRoot) Publisher() *natsout.Publisher {
	return c.publisher
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateRegisterOrderCommandHandler() commands.RegisterOrderCommandHandler {
	return commands.NewRegisterOrderCommandHandler(c.orderUoWFactory(), c.engine)
}

func (c *CompositionRoot) CreateStartTrackingCommandHandler() commands.StartTrackingCommandHandler {
	return commands.NewStartTrackingCommandHandler(
		c.orderUoWFactory(),
		c.engine,
		c.routes,
		c.config.RouteTimeout,
	)
}

func (c *CompositionRoot) CreateStopTrackingCommandHandler() commands.StopTrackingCommandHandler {
	return commands.NewStopTrackingCommandHandler(c.engine)
}

func (c *CompositionRoot) CreateTickActiveOrdersCommandHandler() commands.TickActiveOrdersCommandHandler {
	return commands.NewTickActiveOrdersCommandHandler(c.engine)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateTrackOrderQueryHandler() queries.TrackOrderQueryHandler {
	return queries.NewTrackOrderQueryHandler(c.gormDB)
}

// CreateJobManager builds the scheduled job set.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateTickActiveOrdersCommandHandler(),
		c.config.TickCronSpec,
		c.logger,
	)
}

// CreateHTTPServer builds the REST server with all handlers attached.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	registerHandler := c.CreateRegisterOrderCommandHandler()
	startHandler := c.CreateStartTrackingCommandHandler()
	stopHandler := c.CreateStopTrackingCommandHandler()
	activeOrdersHandler := c.CreateGetActiveOrdersQueryHandler()
	trackHandler := c.CreateTrackOrderQueryHandler()

	return httpin.NewServer(
		&registerHandler,
		&startHandler,
		&stopHandler,
		activeOrdersHandler,
		trackHandler,
		c.relay,
		c.engine,
	)
}

// FuncOrderUoWFactory adapts a closure to the OrderUoWFactory interface.
type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
