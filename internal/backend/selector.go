package backend

import (
	"sync"

	"github.com/tyemirov/aicommit/internal/aiconfig"
)

// Selector hands out one cached backend per provider. A cache hit refreshes the cached
// instance's credentials before returning it.
type Selector struct {
	mutex     sync.Mutex
	factories map[aiconfig.Provider]Factory
	instances map[aiconfig.Provider]Backend
}

// NewSelector constructs a selector over the registered factories.
func NewSelector(factories map[aiconfig.Provider]Factory) *Selector {
	registered := make(map[aiconfig.Provider]Factory, len(factories))
	for provider, factory := range factories {
		if factory != nil {
			registered[provider] = factory
		}
	}
	return &Selector{
		factories: registered,
		instances: make(map[aiconfig.Provider]Backend),
	}
}

// Select returns the backend for the configured provider.
func (selector *Selector) Select(configuration aiconfig.Configuration) (Backend, error) {
	selector.mutex.Lock()
	defer selector.mutex.Unlock()

	if instance, cached := selector.instances[configuration.Provider]; cached {
		instance.UpdateConfiguration(configuration.APIs)
		return instance, nil
	}

	factory, registered := selector.factories[configuration.Provider]
	if !registered {
		return nil, aiconfig.UnsupportedProviderError{Provider: configuration.Provider}
	}

	instance := factory(configuration.APIs)
	selector.instances[configuration.Provider] = instance
	return instance, nil
}

// ResetAll drops every cached instance.
func (selector *Selector) ResetAll() {
	selector.mutex.Lock()
	defer selector.mutex.Unlock()
	selector.instances = make(map[aiconfig.Provider]Backend)
}
