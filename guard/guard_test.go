package guard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssertPanicsFromOtherGoroutine(t *testing.T) {
	var g Guard
	g.Bind()
	g.Assert() // does not panic on the owning goroutine

	done := make(chan interface{}, 1)
	go func() {
		defer func() { done <- recover() }()
		g.Assert()
	}()
	r := <-done
	require.NotNil(t, r)
}

func TestTransactionRollsBackOnFailure(t *testing.T) {
	var tx Transaction
	var applied []int

	err := tx.Step(func() error {
		applied = append(applied, 1)
		return nil
	}, func() {
		applied = applied[:len(applied)-1]
	})
	require.NoError(t, err)

	err = tx.Step(func() error {
		return require.AnError
	}, nil)
	require.Error(t, err)
	require.Empty(t, applied)
}

func TestTransactionCommitKeepsEffects(t *testing.T) {
	var tx Transaction
	applied := 0
	err := tx.Step(func() error {
		applied++
		return nil
	}, func() {
		applied--
	})
	require.NoError(t, err)
	tx.Commit()
	tx.Rollback() // must be a no-op after Commit
	require.Equal(t, 1, applied)
}
