package vault

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasGenerator_Deterministic(t *testing.T) {
	gen := NewAliasGenerator([]byte("test-alias-key"))

	first := gen.Generate("alice@example.com", 0)
	second := gen.Generate("alice@example.com", 0)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestAliasGenerator_DistinctIdentities(t *testing.T) {
	gen := NewAliasGenerator([]byte("test-alias-key"))

	seen := make(map[string]int)
	for i := range 200 {
		alias := gen.Generate(fmt.Sprintf("user-%d@example.com", i), 0)
		seen[alias]++
	}

	// Word-list space is ~1k combinations, so a few collisions among 200
	// identities are expected; total uniformity is not. What matters is
	// that most identities land on distinct names.
	assert.Greater(t, len(seen), 150)
}

func TestAliasGenerator_AttemptsPerturb(t *testing.T) {
	gen := NewAliasGenerator([]byte("test-alias-key"))

	base := gen.Generate("bob@example.com", 0)
	aliases := map[string]bool{base: true}
	for attempt := 1; attempt < MaxAliasAttempts; attempt++ {
		aliases[gen.Generate("bob@example.com", attempt)] = true
	}

	// Perturbed attempts must move away from the canonical alias while
	// staying deterministic.
	assert.Greater(t, len(aliases), 1)
	assert.Equal(t, gen.Generate("bob@example.com", 3), gen.Generate("bob@example.com", 3))
}

func TestAliasGenerator_KeyChangesAlias(t *testing.T) {
	genA := NewAliasGenerator([]byte("key-a"))
	genB := NewAliasGenerator([]byte("key-b"))

	// Different keys must not produce linkable aliases for the same
	// identity (bar word-list coincidence across many identities).
	different := 0
	for i := range 50 {
		identity := fmt.Sprintf("user-%d", i)
		if genA.Generate(identity, 0) != genB.Generate(identity, 0) {
			different++
		}
	}
	assert.Greater(t, different, 40)
}

func TestAliasGenerator_IdentityDigest(t *testing.T) {
	gen := NewAliasGenerator([]byte("test-alias-key"))

	d1 := gen.IdentityDigest("alice@example.com")
	d2 := gen.IdentityDigest("alice@example.com")
	d3 := gen.IdentityDigest("bob@example.com")

	require.Len(t, d1, 64) // hex SHA-256
	assert.Equal(t, d1, d2)
	assert.NotEqual(t, d1, d3)
	assert.NotContains(t, d1, "alice")
}
