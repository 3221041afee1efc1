package generate

import (
	"fmt"

	"firescribe/internal/config"
	"firescribe/internal/port"
)

// ProviderFactory is a function that creates a Generator from a provider config.
type ProviderFactory func(cfg *config.GeneratorProviderConfig) (port.Generator, error)

// registry of generation provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a generation provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewGenerator creates a Generator from a provider config using the registered factory.
func NewGenerator(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown generation provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
