package errors

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection(t *testing.T) {
	t.Parallel()

	var c Collection

	assert.Zero(t, c.Len())
	require.NoError(t, c.GetError())

	c.Add(nil)
	assert.Zero(t, c.Len())

	first := errors.New("first") //nolint:err113
	c.Add(first)
	assert.Same(t, first, c.GetError())

	second := errors.New("second") //nolint:err113
	c.Add(second)

	err := c.GetError()
	require.ErrorIs(t, err, first)
	require.ErrorIs(t, err, second)
	assert.Equal(t, 2, c.Len())
}

func TestCollection_Concurrent(t *testing.T) {
	t.Parallel()

	var (
		c  Collection
		wg sync.WaitGroup
	)

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			c.Add(errors.New("boom")) //nolint:err113
		}()
	}

	wg.Wait()
	assert.Equal(t, 50, c.Len())
}
