package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_DisabledUsesNoop(t *testing.T) {
	provider, err := NewProvider(nil, Config{Enabled: false}, nil)
	require.NoError(t, err)
	assert.NotNil(t, provider)
}

func TestNewProvider_UnknownProtocol(t *testing.T) {
	_, err := NewProvider(nil, Config{Enabled: true, ExporterProtocol: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}

func TestSettlementInstrumentsAreSafeWithoutProvider(t *testing.T) {
	m := Settlement()
	require.NotNil(t, m)

	// instruments must be usable against the default (noop) meter provider
	m.IncRun()
	m.IncRunError("claim")
	m.AddFeesApplied("transaction_fee", 3)
	m.ObserveRunDuration(250 * time.Millisecond)
}
