// Package di wires the lplockd services: configuration, logger, ledger
// database, journal, event publisher, metrics and the node.
package di

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Container resolves named services, building each one at most once.
type Container struct {
	mu       sync.Mutex
	services map[string]interface{}
	builders map[string]Builder
	closers  []closer
}

// Builder is a function that creates a service instance.
type Builder func(c *Container) (interface{}, error)

type closer struct {
	name string
	fn   func() error
}

// ErrServiceNotFound is returned for names with no service or builder.
var ErrServiceNotFound = errors.New("service not found")

// New creates a new dependency injection container.
func New() *Container {
	return &Container{
		services: make(map[string]interface{}),
		builders: make(map[string]Builder),
	}
}

// Register registers a service instance.
func (c *Container) Register(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// RegisterBuilder registers a builder function for lazy instantiation.
func (c *Container) RegisterBuilder(name string, builder Builder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builders[name] = builder
}

// Get retrieves a service by name, building it on first use. Builders may
// resolve their own dependencies through c.
func (c *Container) Get(name string) (interface{}, error) {
	c.mu.Lock()
	if service, exists := c.services[name]; exists {
		c.mu.Unlock()
		return service, nil
	}
	builder, hasBuilder := c.builders[name]
	c.mu.Unlock()

	if !hasBuilder {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}

	service, err := builder(c)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, exists := c.services[name]; exists {
		return existing, nil
	}
	c.services[name] = service
	return service, nil
}

// OnClose registers fn to run when the container is closed. Closers run in
// reverse registration order.
func (c *Container) OnClose(name string, fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, closer{name: name, fn: fn})
}

// Close releases every built service.
func (c *Container) Close() error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var errs []error
	for _, cl := range slices.Backward(closers) {
		if err := cl.fn(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", cl.name, err))
		}
	}
	return errors.Join(errs...)
}

// Has checks if a service is registered.
func (c *Container) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.services[name]; exists {
		return true
	}
	_, exists := c.builders[name]
	return exists
}

// Service names
const (
	ServiceConfig         = "config"
	ServiceLogger         = "logger"
	ServiceMetrics        = "metrics"
	ServiceStateDB        = "state.db"
	ServiceJournal        = "journal"
	ServiceEventPublisher = "event.publisher"
	ServiceNode           = "node"
)
