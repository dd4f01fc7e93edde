package bootstrap

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Run(t *testing.T) {
	t.Run("returns the run error", func(t *testing.T) {
		app := New()
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return fmt.Errorf("listen failed")
		})
		assert.ErrorContains(t, err, "listen failed")
	})

	t.Run("returns nil when run completes", func(t *testing.T) {
		app := New()
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("cancelled context triggers hooks in LIFO order", func(t *testing.T) {
		app := New()
		var order []string
		app.AddShutdownHook(func(ctx context.Context) error {
			order = append(order, "first")
			return nil
		})
		app.AddShutdownHook(func(ctx context.Context) error {
			order = append(order, "second")
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			select {}
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"second", "first"}, order)
	})

	t.Run("hook errors are joined", func(t *testing.T) {
		app := New()
		app.AddShutdownHook(func(ctx context.Context) error {
			return fmt.Errorf("close db")
		})
		app.AddShutdownHook(func(ctx context.Context) error {
			return fmt.Errorf("close server")
		})

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			select {}
		})
		require.Error(t, err)
		assert.ErrorContains(t, err, "close server")
		assert.ErrorContains(t, err, "close db")
	})
}
