package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashProducesDistinctRecords(t *testing.T) {
	h := NewHasher(4) // min cost keeps the test fast

	first, err := h.Hash("Securepassword123.")
	require.NoError(t, err)
	second, err := h.Hash("Securepassword123.")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each hash must use a fresh salt")
	assert.True(t, strings.HasPrefix(first, "$2"), "record must carry the bcrypt algorithm tag")
	assert.NotContains(t, first, "Securepassword123.")
}

func TestVerify(t *testing.T) {
	h := NewHasher(4)

	record, err := h.Hash("Securepassword123.")
	require.NoError(t, err)

	assert.True(t, h.Verify("Securepassword123.", record))
	assert.False(t, h.Verify("securepassword123.", record))
	assert.False(t, h.Verify("", record))
	assert.False(t, h.Verify("Securepassword123.", "not-a-hash"))
}

func TestNewHasherClampsInvalidCost(t *testing.T) {
	h := NewHasher(999)

	record, err := h.Hash("pw")
	require.NoError(t, err)
	assert.True(t, h.Verify("pw", record))
}
