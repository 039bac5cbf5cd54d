// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRoot(t *testing.T, h slog.Handler) {
	old := Root()
	SetDefault(NewLogger(h))
	t.Cleanup(func() { SetDefault(old) })
}

func TestWithContextResolvesRootLazily(t *testing.T) {
	// created before the root handler is installed, like package loggers
	pkgLogger := WithContext("pkg", "contract")

	var buf bytes.Buffer
	withRoot(t, NewTerminalHandler(&buf, false))

	pkgLogger.Info("bonded node", "node", 7)
	out := buf.String()
	assert.Contains(t, out, "bonded node")
	assert.Contains(t, out, "pkg=contract")
	assert.Contains(t, out, "node=7")

	buf.Reset()
	pkgLogger.With("epoch", 3).Warn("skipped")
	assert.Contains(t, buf.String(), "epoch=3")
	assert.Contains(t, buf.String(), "WARN")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(slog.LevelInfo)
	withRoot(t, NewTerminalHandlerWithLevel(&buf, &lvl, false))

	Debug("hidden")
	Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestJSONHandlerRendersNumbers(t *testing.T) {
	var buf bytes.Buffer
	withRoot(t, JSONHandler(&buf))

	Info("pool", "remaining", uint256.NewInt(1_000_000), "odd")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "1000000", rec["remaining"])
	assert.Equal(t, "info", rec["lvl"])
	assert.Contains(t, rec, errorKey)
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, slog.LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, "warn", LevelString(slog.LevelWarn))
}

func TestAppendUint64(t *testing.T) {
	assert.Equal(t, "99999", string(appendUint64(nil, 99999, false)))
	assert.Equal(t, "1,000,000", string(appendUint64(nil, 1_000_000, false)))
	assert.Equal(t, "-1,000,000", string(appendInt64(nil, -1_000_000)))
	assert.True(t, strings.HasPrefix(string(appendEscapeString(nil, "a b")), `"`))
}
