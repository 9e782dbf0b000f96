package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil knowledge service returns error", func(t *testing.T) {
		ports := &Ports{Query: &mockQueryService{}}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingKnowledgeService)
	})

	t.Run("nil query service returns error", func(t *testing.T) {
		ports := &Ports{Knowledge: &mockKnowledgeService{}}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingQueryService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Knowledge: &mockKnowledgeService{},
			Query:     &mockQueryService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("empty ports returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingKnowledgeService)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Knowledge: &mockKnowledgeService{},
			Query:     &mockQueryService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}
