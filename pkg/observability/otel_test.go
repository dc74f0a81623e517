package observability

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitOTelDisabled(t *testing.T) {
	logger := NewLogger(ErrorLevel, io.Discard)

	providers, err := InitOTel(context.Background(), OTelConfig{Enabled: false}, logger)
	require.NoError(t, err)
	assert.Nil(t, providers)
}

func TestShutdownOTelNilProviders(t *testing.T) {
	logger := NewLogger(ErrorLevel, io.Discard)
	assert.NoError(t, ShutdownOTel(context.Background(), nil, logger))
}
