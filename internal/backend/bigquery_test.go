package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigQuery_ConnectRejectsEmptyProject(t *testing.T) {
	b := NewBigQuery()

	err := b.Connect(context.Background(), "bigquery://")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no project")
}
