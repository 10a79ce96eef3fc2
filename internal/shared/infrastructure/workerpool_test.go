package infrastructure

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWorkerPoolRunsAllTasks vérifie que chaque tâche soumise est exécutée
func TestWorkerPoolRunsAllTasks(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()

	var done int64
	for i := 0; i < 8; i++ {
		err := pool.Submit(func() error {
			atomic.AddInt64(&done, 1)
			return nil
		})
		require.NoError(t, err)
	}
	pool.Wait()

	assert.Equal(t, int64(8), atomic.LoadInt64(&done))
	assert.Empty(t, pool.Errors())
}

// TestWorkerPoolCollectsErrors vérifie que les erreurs de tâches sont conservées
func TestWorkerPoolCollectsErrors(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()

	boom := errors.New("boom")
	require.NoError(t, pool.Submit(func() error { return boom }))
	require.NoError(t, pool.Submit(func() error { return nil }))
	pool.Wait()

	select {
	case err := <-pool.Errors():
		assert.ErrorIs(t, err, boom)
	default:
		t.Fatal("expected an error on the errors channel")
	}
}

// TestWorkerPoolSubmitAfterStop vérifie le refus de tâches après arrêt
func TestWorkerPoolSubmitAfterStop(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Stop()

	err := pool.Submit(func() error { return nil })
	assert.Error(t, err)
}

// BenchmarkWorkerPool mesure le débit du pool sur des tâches triviales
func BenchmarkWorkerPool(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		pool := NewWorkerPool(4)
		pool.Start()
		for j := 0; j < 8; j++ {
			_ = pool.Submit(func() error { return nil })
		}
		pool.Wait()
	}
}
