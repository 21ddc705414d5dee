package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safkanlabs/safkan/internal/interfaces"
)

func TestSchemaCoversAllPageKinds(t *testing.T) {
	for _, kind := range interfaces.AllPageKinds {
		ps, err := pageSchema(kind)
		require.NoError(t, err, "page kind %s", kind)
		assert.NotEmpty(t, ps.TableHints, "page kind %s", kind)
		assert.Greater(t, ps.MinColumns, 0, "page kind %s", kind)
	}
}

func TestPageSchemaUnknownKind(t *testing.T) {
	_, err := pageSchema("results")
	assert.Error(t, err)
}
