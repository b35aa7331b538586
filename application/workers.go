package application

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"longshot/domain/entities"
)

// MarketGenerator runs one market generation pass
type MarketGenerator interface {
	RunGenerationCycle(ctx context.Context) (*entities.GenerationSummary, error)
}

// MarketResolver runs one market resolution pass
type MarketResolver interface {
	RunResolutionCycle(ctx context.Context) (*entities.ResolutionSummary, error)
}

// GenerationWorker periodically scans the signal feed and opens new markets
type GenerationWorker struct {
	generator MarketGenerator
}

// NewGenerationWorker creates a new generation worker
func NewGenerationWorker(generator MarketGenerator) *GenerationWorker {
	return &GenerationWorker{generator: generator}
}

// Start begins the generation loop. It returns a stop function. A zero
// interval disables the worker.
func (w *GenerationWorker) Start(ctx context.Context, interval time.Duration) func() {
	stopChan := make(chan struct{})

	if interval <= 0 {
		log.Info("Market generation worker disabled")
		return func() {}
	}

	go func() {
		log.WithField("interval", interval.String()).Info("Market generation worker started")
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Market generation worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Market generation worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				summary, err := w.generator.RunGenerationCycle(ctx)
				if err != nil {
					log.Errorf("Error running generation cycle: %v", err)
					continue
				}
				log.WithFields(log.Fields{
					"created": summary.Created,
					"skipped": summary.Skipped,
					"errors":  summary.Errors,
				}).Info("Generation cycle completed")
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// ResolutionWorker periodically settles markets whose deadline has passed
type ResolutionWorker struct {
	resolver MarketResolver
}

// NewResolutionWorker creates a new resolution worker
func NewResolutionWorker(resolver MarketResolver) *ResolutionWorker {
	return &ResolutionWorker{resolver: resolver}
}

// Start begins the resolution loop. It returns a stop function. A zero
// interval disables the worker.
func (w *ResolutionWorker) Start(ctx context.Context, interval time.Duration) func() {
	stopChan := make(chan struct{})

	if interval <= 0 {
		log.Info("Market resolution worker disabled")
		return func() {}
	}

	go func() {
		log.WithField("interval", interval.String()).Info("Market resolution worker started")
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Market resolution worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Market resolution worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				summary, err := w.resolver.RunResolutionCycle(ctx)
				if err != nil {
					log.Errorf("Error running resolution cycle: %v", err)
					continue
				}
				if summary.Resolved > 0 || summary.Cancelled > 0 || summary.Errors > 0 {
					log.WithFields(log.Fields{
						"resolved":  summary.Resolved,
						"cancelled": summary.Cancelled,
						"errors":    summary.Errors,
					}).Info("Resolution cycle completed")
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}
