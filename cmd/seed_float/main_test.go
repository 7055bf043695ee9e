package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cashbox-api/internal/domain/entity"
)

func TestParseCounts(t *testing.T) {
	got, err := parseCounts("10000=2, 5000=4,500=1,500=2")
	require.NoError(t, err)
	assert.Equal(t, entity.Quantities{10000: 2, 5000: 4, 500: 3}, got)
}

func TestParseCounts_Errores(t *testing.T) {
	for _, in := range []string{"", "10000", "abc=1", "500=x", "500=0"} {
		_, err := parseCounts(in)
		assert.Error(t, err, in)
	}
}
