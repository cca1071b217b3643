package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, Brokers(" a:9092, ,b:9092 "))
	assert.Nil(t, Brokers(""))
}

func TestNewClientRequiresBrokers(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Brokers: " , "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no kafka brokers")
}
