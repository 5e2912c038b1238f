package analysis

import (
	"fmt"

	"britta/internal/config"
	"britta/internal/port"
)

// ProviderFactory creates an AnalysisStreamer from a provider config.
type ProviderFactory func(cfg *config.AnalysisProviderConfig) (port.AnalysisStreamer, error)

// registry of analysis provider factories, populated by init() in each
// provider package or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an analysis provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewStreamer creates an AnalysisStreamer from a provider config using the
// registered factory.
func NewStreamer(cfg *config.AnalysisProviderConfig) (port.AnalysisStreamer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown analysis provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
