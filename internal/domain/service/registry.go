package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/infrastructure/monitoring"
	"github.com/bitcoin-os/shell/internal/shared/types"
	"go.uber.org/zap"
)

// ErrInvalidToolID is returned when a tool id is not "service.action"
var ErrInvalidToolID = errors.New("invalid tool ID format")

// Provider interface for service implementations
type Provider interface {
	Definition() types.Service
	Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error)
}

// Registry manages integration services and dispatches tool calls
type Registry struct {
	services sync.Map
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewRegistry creates a new service registry
func NewRegistry() *Registry {
	return &Registry{logger: zap.NewNop()}
}

// WithMetrics records every dispatched call
func (r *Registry) WithMetrics(metrics *monitoring.Metrics) *Registry {
	r.metrics = metrics
	return r
}

// WithLogger sets the registry logger
func (r *Registry) WithLogger(logger *zap.Logger) *Registry {
	r.logger = logging.OrNop(logger)
	return r
}

// Register adds a service provider
func (r *Registry) Register(provider Provider) error {
	def := provider.Definition()
	if def.ID == "" {
		return fmt.Errorf("service ID cannot be empty")
	}

	r.services.Store(def.ID, provider)
	r.logger.Debug("service registered", zap.String("service", def.ID), zap.Int("tools", len(def.Tools)))
	return nil
}

// Unregister removes a service provider
func (r *Registry) Unregister(serviceID string) {
	r.services.Delete(serviceID)
}

// Get retrieves a service by ID
func (r *Registry) Get(serviceID string) (Provider, bool) {
	val, ok := r.services.Load(serviceID)
	if !ok {
		return nil, false
	}
	return val.(Provider), true
}

// List returns registered services sorted by id, optionally filtered by category
func (r *Registry) List(category *types.Category) []types.Service {
	var services []types.Service
	r.services.Range(func(_, value interface{}) bool {
		def := value.(Provider).Definition()
		if category == nil || def.Category == *category {
			services = append(services, def)
		}
		return true
	})
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services
}

// Discover finds services relevant to a free-text query
func (r *Registry) Discover(query string, limit int) []types.Service {
	type scored struct {
		service types.Service
		score   float64
	}

	q := strings.ToLower(query)
	var results []scored

	r.services.Range(func(_, value interface{}) bool {
		def := value.(Provider).Definition()
		if score := relevance(q, def); score > 0 {
			results = append(results, scored{service: def, score: score})
		}
		return true
	})

	sort.Slice(results, func(i, j int) bool {
		if results[i].score == results[j].score {
			return results[i].service.ID < results[j].service.ID
		}
		return results[i].score > results[j].score
	})

	output := make([]types.Service, 0, limit)
	for i := 0; i < len(results) && i < limit; i++ {
		output = append(output, results[i].service)
	}
	return output
}

// Execute runs a service tool. Unknown services answer 404 and malformed
// tool ids 400; provider errors are returned as-is for the caller to map.
func (r *Registry) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	serviceID, action, ok := strings.Cut(toolID, ".")
	if !ok || serviceID == "" || action == "" {
		res, _ := types.Failure(fmt.Sprintf("invalid tool ID: %q", toolID))
		return res, nil
	}

	provider, found := r.Get(serviceID)
	if !found {
		res, _ := types.FailureStatus(http.StatusNotFound, fmt.Sprintf("service not found: %s", serviceID))
		return res, nil
	}

	timer := monitoring.NewTimer(r.metrics, serviceID, action)
	result, err := provider.Execute(ctx, toolID, params, appCtx)
	switch {
	case err != nil:
		timer.Stop("error")
		r.logger.Warn("service call failed",
			zap.String("tool", toolID),
			zap.Error(err))
	case result != nil && result.Success:
		timer.Stop("success")
	default:
		timer.Stop("failure")
	}
	return result, err
}

// Stats returns registry statistics
func (r *Registry) Stats() Stats {
	stats := Stats{Categories: make(map[string]int)}
	r.services.Range(func(_, value interface{}) bool {
		def := value.(Provider).Definition()
		stats.TotalServices++
		stats.TotalTools += len(def.Tools)
		stats.Categories[string(def.Category)]++
		return true
	})
	return stats
}

// Stats summarizes the registered services
type Stats struct {
	TotalServices int            `json:"total_services"`
	TotalTools    int            `json:"total_tools"`
	Categories    map[string]int `json:"categories"`
}

func relevance(query string, service types.Service) float64 {
	score := 0.0

	if strings.Contains(query, service.ID) || strings.Contains(query, strings.ToLower(service.Name)) {
		score += 10.0
	}

	for _, word := range strings.Fields(strings.ToLower(service.Description)) {
		if len(word) > 3 && strings.Contains(query, word) {
			score += 5.0
		}
	}

	for _, capability := range service.Capabilities {
		if strings.Contains(query, strings.ReplaceAll(strings.ToLower(capability), "_", " ")) {
			score += 3.0
		}
	}

	if strings.Contains(query, string(service.Category)) {
		score += 2.0
	}

	return score
}
