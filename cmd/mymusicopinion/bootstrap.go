package main

import (
	"context"
	"errors"
	"fmt"

	"mymusicopinion/internal/store"
)

// bootstrapDemoData seeds a demo account so a fresh instance is usable
// immediately. Re-running against an existing database is a no-op.
func bootstrapDemoData(ctx context.Context, dataStore *store.Store) error {
	if err := dataStore.CreateUser(ctx, "demo", "demo123"); err != nil && !errors.Is(err, store.ErrUserExists) {
		return fmt.Errorf("bootstrap demo user: %w", err)
	}
	return nil
}
