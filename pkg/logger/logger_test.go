package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	require.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	require.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	require.Equal(t, zerolog.InfoLevel, parseLevel("loud"))
}

func TestWithContext(t *testing.T) {
	require.Same(t, Get(), WithContext(context.Background()))

	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := NewContext(context.Background(), &l)
	require.Same(t, &l, WithContext(ctx))
}

func TestStoreWriteLogsFailuresAsWarnings(t *testing.T) {
	var buf bytes.Buffer
	prev := log
	log = zerolog.New(&buf)
	t.Cleanup(func() { log = prev })

	StoreWrite("CART", 7, time.Millisecond, errors.New("disk full"))
	require.Contains(t, buf.String(), `"level":"warn"`)
	require.Contains(t, buf.String(), `"version":7`)
	require.Contains(t, buf.String(), "disk full")
}

func TestConvenienceMethodsUseGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log
	log = zerolog.New(&buf)
	t.Cleanup(func() { log = prev })

	Debug().Msg("writer stopped")
	Error().Msg("store close failed")
	require.Contains(t, buf.String(), `"level":"debug","message":"writer stopped"`)
	require.Contains(t, buf.String(), `"level":"error","message":"store close failed"`)
}
