package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryLookup(t *testing.T) {
	s, ok := DefaultRegistry.Lookup("amazonrds")
	require.True(t, ok)
	assert.Equal(t, "AmazonRDS", s.Code)
	assert.Equal(t, RelationalDatabase, s.Tag)
	assert.True(t, s.InstanceBased)

	assert.False(t, DefaultRegistry.IsInstanceBased("AmazonDynamoDB"))
	assert.Equal(t, Unknown, DefaultRegistry.TagOf("AmazonS3"))

	_, err := DefaultRegistry.Get("AmazonS3")
	assert.Error(t, err)
}

func TestCodesOptIn(t *testing.T) {
	without := DefaultRegistry.Codes(false)
	assert.NotContains(t, without, "AmazonEC2")
	assert.Len(t, without, 5)

	with := DefaultRegistry.Codes(true)
	assert.Contains(t, with, "AmazonEC2")
	assert.Equal(t, "AmazonDynamoDB", with[0])
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Service{Code: "AmazonMQ"}))
	assert.Error(t, r.Register(Service{Code: "amazonmq"}))
	assert.Error(t, r.Register(Service{}))
}
