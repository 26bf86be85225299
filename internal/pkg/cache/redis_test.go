package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedisClient(&Config{Addr: mr.Addr()})
	require.NoError(t, err)
	assert.NoError(t, c.Close())

	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisClient(&Config{Addr: addr})
	assert.Error(t, err)
}

func TestDeletePrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedisClient(&Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer c.Close()

	// more than one SCAN batch
	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("menu:recipe:%d", i), "x"))
	}
	require.NoError(t, mr.Set("other:key", "y"))

	n, err := c.DeletePrefix(context.Background(), "menu:recipe:")
	require.NoError(t, err)
	assert.Equal(t, 250, n)
	assert.Equal(t, []string{"other:key"}, mr.Keys())
}
