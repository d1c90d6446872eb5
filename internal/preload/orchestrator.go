package preload

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type OrchestratorConfig struct {
	// LayerTimeout bounds one layer's attempt for one object.
	LayerTimeout time.Duration
	// FanOut is the per-layer concurrency width.
	FanOut int
}

// Orchestrator fans a batch of object IDs out across the configured cache
// layers. Layers run concurrently with each other; within a layer, object
// attempts run up to FanOut wide. Per-object failures are recorded in the
// metrics and never abort the batch.
type Orchestrator struct {
	layers []CacheLayer
	cfg    OrchestratorConfig
}

func NewOrchestrator(layers []CacheLayer, cfg OrchestratorConfig) *Orchestrator {
	if cfg.FanOut <= 0 {
		cfg.FanOut = 10
	}
	return &Orchestrator{layers: layers, cfg: cfg}
}

func (o *Orchestrator) Preload(ctx context.Context, ids []uuid.UUID) *PreloadMetrics {
	metrics := &PreloadMetrics{
		StartTime:    time.Now(),
		ObjectCount:  len(ids),
		LayerMetrics: make(map[string]*PreloadLayerMetrics, len(o.layers)),
	}

	for _, layer := range o.layers {
		metrics.LayerMetrics[layer.Name()] = &PreloadLayerMetrics{LayerName: layer.Name()}
	}

	var wg sync.WaitGroup
	for _, layer := range o.layers {
		wg.Add(1)
		go func(layer CacheLayer) {
			defer wg.Done()
			layerStart := time.Now()
			o.preloadLayer(ctx, layer, ids, metrics.LayerMetrics[layer.Name()])
			metrics.LayerMetrics[layer.Name()].LatencyMs = float64(time.Since(layerStart).Microseconds()) / 1000.0
		}(layer)
	}
	wg.Wait()

	metrics.Success = true
	for _, lm := range metrics.LayerMetrics {
		metrics.ErrorCount += lm.FailedCount
		metrics.TotalSize += lm.TotalSize
		if lm.FailedCount > 0 {
			metrics.Success = false
		}
	}
	metrics.TotalLatencyMs = float64(time.Since(metrics.StartTime).Microseconds()) / 1000.0

	log.Printf("preload completed: %d objects across %d layers in %.2fms (%d errors)",
		len(ids), len(o.layers), metrics.TotalLatencyMs, metrics.ErrorCount)
	return metrics
}

func (o *Orchestrator) preloadLayer(ctx context.Context, layer CacheLayer, ids []uuid.UUID, lm *PreloadLayerMetrics) {
	sem := make(chan struct{}, o.cfg.FanOut)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			attemptCtx := ctx
			if o.cfg.LayerTimeout > 0 {
				var cancel context.CancelFunc
				attemptCtx, cancel = context.WithTimeout(ctx, o.cfg.LayerTimeout)
				defer cancel()
			}

			objStart := time.Now()
			result, err := layer.Warm(attemptCtx, id)
			latency := float64(time.Since(objStart).Microseconds()) / 1000.0

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				lm.FailedCount++
				log.Printf("preload %s: warm failed for %s: %v", layer.Name(), id, err)
			case result.Status == StatusSkipped:
				lm.SkippedCount++
			default:
				lm.SuccessCount++
				lm.TotalSize += result.SizeBytes
			}
			if latency > lm.MaxObjectLatencyMs {
				lm.MaxObjectLatencyMs = latency
			}
		}(id)
	}
	wg.Wait()
}
