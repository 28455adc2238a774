package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chainx/config"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), "chainx-rpc", "test", config.Telemetry{Traces: true})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, err = Init(context.Background(), " ", "test", config.Telemetry{})
	require.Error(t, err)
}

func TestParseHeaders(t *testing.T) {
	headers := ParseHeaders("authorization=Bearer x, tenant = chainx ,broken,=skip")
	require.Equal(t, map[string]string{"authorization": "Bearer x", "tenant": "chainx"}, headers)
}
