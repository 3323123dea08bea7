// Package listener provides a Postgres LISTEN/NOTIFY consumer for
// cross-station re-sync. It holds a dedicated pgx connection (not from
// the pool) listening on the `mesa_game_updated` channel.
//
// Every write path at any scoring station issues pg_notify on that
// channel; this consumer reloads the matching session so a reopened or
// secondary console converges on the shared state.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"

	"github.com/ligaboreal/mesa-tecnica/internal/config"
	"github.com/ligaboreal/mesa-tecnica/internal/engine"
)

// GameUpdatedEvent is the JSON payload from pg_notify('mesa_game_updated', ...).
type GameUpdatedEvent struct {
	GameID string `json:"game_id"`
	Kind   string `json:"kind"`
}

// Start opens a dedicated connection and listens on the
// mesa_game_updated channel. It reconnects with exponential backoff on
// connection loss. Blocks until ctx is cancelled. Intended to be
// called with `go`.
func Start(ctx context.Context, dbURL string, mgr *engine.Manager, logger *slog.Logger) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0 // retry forever

	for {
		err := listenLoop(ctx, dbURL, mgr, logger)
		if ctx.Err() != nil {
			logger.Info("Game listener stopped (context cancelled)")
			return
		}

		wait := bo.NextBackOff()
		logger.Error("Game listener disconnected, reconnecting...",
			"error", err, "backoff", wait)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection
// drops or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, mgr *engine.Manager, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+config.NotifyChannel)
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", config.NotifyChannel, err)
	}
	logger.Info("Game listener connected", "channel", config.NotifyChannel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		var event GameUpdatedEvent
		if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
			logger.Warn("Failed to parse game event",
				"payload", notification.Payload, "error", err)
			continue
		}
		if event.GameID == "" {
			continue
		}

		// Refresh is a no-op for games this station has not opened.
		if err := mgr.Refresh(ctx, event.GameID); err != nil {
			logger.Warn("Failed to refresh session",
				"game", event.GameID, "kind", event.Kind, "error", err)
			continue
		}
		logger.Debug("Session refreshed", "game", event.GameID, "kind", event.Kind)
	}
}
