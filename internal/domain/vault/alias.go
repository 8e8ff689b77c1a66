package vault

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// MaxAliasAttempts bounds the deterministic perturbation loop when a
// generated alias collides with one already issued to another identity.
const MaxAliasAttempts = 8

// Pirate-themed word lists used to render a keyed hash as a plausible name.
// The alias must look arbitrary to an outside observer; linkability is
// prevented by keying the hash, not by the lists themselves.
var aliasAdjectives = []string{
	"Salty", "Rusty", "One-Eyed", "Black", "Crimson", "Stormy",
	"Barnacle", "Gallows", "Iron", "Mad", "Scurvy", "Silver",
	"Driftwood", "Cutlass", "Gunpowder", "Kraken", "Tattered", "Brine",
	"Shipwreck", "Cannonball", "Moonless", "Ragged", "Weathered", "Crooked",
	"Thundering", "Grizzled", "Sable", "Reef", "Squall", "Marooned",
	"Bilge", "Powder",
}

var aliasSurnames = []string{
	"Jack", "Anne", "Morgan", "Flint", "Bonny", "Rackham",
	"Teach", "Kidd", "Drake", "Bart", "Grace", "Mary",
	"Ned", "Israel", "Calico", "Vane", "Hornigold", "Read",
	"Avery", "Roberts", "Low", "Bellamy", "Tew", "Cook",
	"Sparrow", "Hawkins", "Gunn", "Pew", "Billy", "Turner",
	"Blood", "Dampier",
}

// AliasGenerator deterministically derives pirate-name aliases from real
// identities using a keyed hash. The same identity always yields the same
// alias for a given key; distinct identities yield unrelated-looking names.
type AliasGenerator struct {
	key []byte
}

// NewAliasGenerator creates an alias generator keyed with the given material
func NewAliasGenerator(key []byte) *AliasGenerator {
	return &AliasGenerator{key: key}
}

// Generate derives the alias for identity at the given perturbation attempt.
// Attempt 0 is the canonical alias; higher attempts are used only to step
// past collisions and are equally deterministic.
func (g *AliasGenerator) Generate(identity string, attempt int) string {
	mac := hmac.New(sha256.New, g.key)
	mac.Write([]byte(identity))
	if attempt > 0 {
		fmt.Fprintf(mac, "#%d", attempt)
	}
	sum := mac.Sum(nil)

	adj := aliasAdjectives[binary.BigEndian.Uint32(sum[0:4])%uint32(len(aliasAdjectives))]
	surname := aliasSurnames[binary.BigEndian.Uint32(sum[4:8])%uint32(len(aliasSurnames))]

	alias := adj + " " + surname
	if attempt > 1 {
		// Word-list capacity is bounded; late attempts disambiguate with a
		// short keyed suffix instead of cycling through the same pairs.
		alias = fmt.Sprintf("%s %s", alias, hex.EncodeToString(sum[8:10]))
	}
	return alias
}

// IdentityDigest returns the keyed digest of a real identity, used as the
// lookup key in the global alias registry so the registry never stores the
// identity itself.
func (g *AliasGenerator) IdentityDigest(identity string) string {
	mac := hmac.New(sha256.New, g.key)
	mac.Write([]byte(identity))
	return hex.EncodeToString(mac.Sum(nil))
}
