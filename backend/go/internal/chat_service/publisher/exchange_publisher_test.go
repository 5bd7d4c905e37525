package publisher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EchoChat/backend/go/pkg/logger"
)

func TestNewExchangePublisherValidatesConfig(t *testing.T) {
	log := logger.New("publisher-test", "", "")

	_, err := NewExchangePublisher(nil, "chat-exchanges", log)
	assert.Error(t, err, "missing brokers must be rejected")

	_, err = NewExchangePublisher([]string{"localhost:9092"}, "", log)
	assert.Error(t, err, "missing topic must be rejected")

	p, err := NewExchangePublisher([]string{"localhost:9092"}, "chat-exchanges", log)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NoError(t, p.Close())
}
