package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownHooks_AddContext(t *testing.T) {
	t.Run("adds hook successfully", func(t *testing.T) {
		hooks := &ShutdownHooks{}
		called := false

		hooks.AddContext("test", func(ctx context.Context) error {
			called = true
			return nil
		})

		require.Len(t, hooks.hooks, 1)
		assert.Equal(t, "test", hooks.hooks[0].name)

		hooks.Execute(context.Background())
		assert.True(t, called, "hook should have been called")
	})

	t.Run("ignores nil hook", func(t *testing.T) {
		hooks := &ShutdownHooks{}
		hooks.AddContext("nil-hook", nil)
		require.Len(t, hooks.hooks, 0, "nil hook should not be added")
	})
}

func TestShutdownHooks_Add(t *testing.T) {
	t.Run("wraps and adds hook successfully", func(t *testing.T) {
		hooks := &ShutdownHooks{}
		called := false

		hooks.Add("test", func() error {
			called = true
			return nil
		})

		require.Len(t, hooks.hooks, 1)

		hooks.Execute(context.Background())
		assert.True(t, called, "hook should have been called")
	})

	t.Run("wrapped hook returns error correctly", func(t *testing.T) {
		hooks := &ShutdownHooks{}
		expectedErr := errors.New("test error")

		hooks.Add("error-hook", func() error {
			return expectedErr
		})

		require.Len(t, hooks.hooks, 1)
		assert.Equal(t, expectedErr, hooks.hooks[0].fn(context.Background()))
	})
}

func TestShutdownHooks_ExecutionOrder(t *testing.T) {
	hooks := &ShutdownHooks{}
	var order []string

	hooks.Add("first", func() error {
		order = append(order, "first")
		return nil
	})
	hooks.Add("second", func() error {
		order = append(order, "second")
		return errors.New("failure does not stop execution")
	})
	hooks.Add("third", func() error {
		order = append(order, "third")
		return nil
	})

	hooks.Execute(context.Background())

	assert.Equal(t, []string{"first", "second", "third"}, order)
}
