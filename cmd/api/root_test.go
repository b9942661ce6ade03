// AngelaMos | 2026
// root_test.go

package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/member-portal/internal/config"
)

func TestRootCommandWiring(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")

	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Empty(t, flag.DefValue)

	migrate, _, err := cmd.Find([]string{"migrate"})
	require.NoError(t, err)
	assert.NotNil(t, migrate.Flags().Lookup("database-url"))
}

func TestSetupLoggerLevels(t *testing.T) {
	ctx := context.Background()

	debug := setupLogger(config.LogConfig{Level: "debug", Format: "text"})
	assert.True(t, debug.Enabled(ctx, slog.LevelDebug))

	info := setupLogger(config.LogConfig{Level: "bogus", Format: "json"})
	assert.False(t, info.Enabled(ctx, slog.LevelDebug))
	assert.True(t, info.Enabled(ctx, slog.LevelInfo))

	errOnly := setupLogger(config.LogConfig{Level: "error"})
	assert.False(t, errOnly.Enabled(ctx, slog.LevelWarn))
}

func TestApplyMigrationsRejectsBadURL(t *testing.T) {
	_, err := applyMigrations("mysql://nowhere/db")
	assert.Error(t, err)
}
