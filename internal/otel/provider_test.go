package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(Config{Enabled: false})
	require.NoError(t, err)

	assert.Nil(t, p.LoggerProvider())
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_WithLogWriter(t *testing.T) {
	global := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(global) })

	var buf bytes.Buffer
	p, err := New(Config{
		Enabled:      true,
		ServiceName:  "openscore-test",
		BatchTimeout: time.Minute,
		LogWriter:    &buf,
	})
	require.NoError(t, err)
	require.NotNil(t, p.LoggerProvider())

	counter, err := otel.Meter("test").Int64Counter("rounds")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	require.NoError(t, p.Flush(context.Background()))
	assert.Contains(t, buf.String(), `"rounds"`)
	assert.Contains(t, buf.String(), "openscore-test")

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNew_WithEndpoint(t *testing.T) {
	p, err := New(Config{
		Enabled:      true,
		ServiceName:  "openscore-test",
		BatchTimeout: time.Second,
		Endpoint:     "localhost:4318",
		Insecure:     true,
	})
	require.NoError(t, err)
	assert.NotNil(t, p.LoggerProvider())
}

func TestNew_EnabledWithoutSinks(t *testing.T) {
	_, err := New(Config{Enabled: true, ServiceName: "openscore-test"})
	assert.Error(t, err)
}
