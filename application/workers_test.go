package application

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"longshot/domain/entities"
)

type countingResolver struct {
	runs atomic.Int32
}

func (r *countingResolver) RunResolutionCycle(ctx context.Context) (*entities.ResolutionSummary, error) {
	r.runs.Add(1)
	return &entities.ResolutionSummary{}, nil
}

type countingGenerator struct {
	runs atomic.Int32
}

func (g *countingGenerator) RunGenerationCycle(ctx context.Context) (*entities.GenerationSummary, error) {
	g.runs.Add(1)
	return &entities.GenerationSummary{}, nil
}

func TestResolutionWorkerRunsOnInterval(t *testing.T) {
	resolver := &countingResolver{}
	worker := NewResolutionWorker(resolver)

	stop := worker.Start(context.Background(), 10*time.Millisecond)
	defer stop()

	assert.Eventually(t, func() bool {
		return resolver.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestResolutionWorkerStops(t *testing.T) {
	resolver := &countingResolver{}
	worker := NewResolutionWorker(resolver)

	stop := worker.Start(context.Background(), 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		return resolver.runs.Load() >= 1
	}, time.Second, time.Millisecond)

	stop()
	time.Sleep(20 * time.Millisecond)
	after := resolver.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, resolver.runs.Load())
}

func TestGenerationWorkerDisabledAtZeroInterval(t *testing.T) {
	generator := &countingGenerator{}
	worker := NewGenerationWorker(generator)

	stop := worker.Start(context.Background(), 0)
	defer stop()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), generator.runs.Load())
}

func TestGenerationWorkerHonorsContextCancel(t *testing.T) {
	generator := &countingGenerator{}
	worker := NewGenerationWorker(generator)

	ctx, cancel := context.WithCancel(context.Background())
	stop := worker.Start(ctx, 5*time.Millisecond)
	defer stop()

	assert.Eventually(t, func() bool {
		return generator.runs.Load() >= 1
	}, time.Second, time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	after := generator.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, generator.runs.Load())
}
