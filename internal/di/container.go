// Package di provides a minimal service container used to wire bounded
// context modules together without import cycles.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container.
type ServiceRegistry interface {
	// Get returns the service registered under name, instantiating it on
	// first access when a factory was registered. Panics if unknown.
	Get(name string) any
}

// Container registers services and factories by name.
type Container interface {
	ServiceRegistry

	// Register stores an already-constructed service.
	Register(name string, svc any)

	// RegisterFactory stores a lazily-invoked constructor. The factory runs
	// at most once; its result is cached.
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type container struct {
	mu        sync.Mutex
	services  map[string]any
	factories map[string]func(ServiceRegistry) any
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		services:  make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
	}
}

func (c *container) Register(name string, svc any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = svc
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = factory
}

func (c *container) Get(name string) any {
	c.mu.Lock()
	if svc, ok := c.services[name]; ok {
		c.mu.Unlock()
		return svc
	}
	factory, ok := c.factories[name]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: no service registered under %q", name))
	}
	// Release the lock while the factory runs: factories resolve their own
	// dependencies through Get.
	c.mu.Unlock()
	svc := factory(c)
	c.mu.Lock()
	c.services[name] = svc
	c.mu.Unlock()
	return svc
}

// Token is a typed service key. The type parameter makes resolution
// type-safe at the call site.
type Token[T any] struct {
	name string
}

// NewToken creates a typed token with a unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// String returns the token's registry name.
func (t Token[T]) String() string {
	return t.name
}

// RegisterToken registers a typed factory under a token.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(token.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a typed service registered under a token.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	svc, ok := sr.Get(token.name).(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type %T", token.name, sr.Get(token.name)))
	}
	return svc
}
