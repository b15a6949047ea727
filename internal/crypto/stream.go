// Package crypto implements the seed-keyed stream transform applied to
// encrypted model payloads.
package crypto

// DefaultSeed is the format's fixed fallback seed, used whenever a file
// does not carry its own seed in the header.
const DefaultSeed uint32 = 0x6B8B4567

// Config selects the seed policy for one codec invocation. The zero value
// is not valid; use Defaults.
type Config struct {
	DefaultSeed uint32
}

// Defaults returns the stock seed policy.
func Defaults() Config {
	return Config{DefaultSeed: DefaultSeed}
}

// Resolve picks the seed for a payload: files flagged as alternative-seed
// carry the seed in their header key field, everything else uses the
// configured default.
func (c Config) Resolve(altSeed bool, headerKey uint32) uint32 {
	if altSeed {
		return headerKey
	}
	return c.DefaultSeed
}

const (
	// Numerical Recipes LCG; one step per payload byte.
	lcgMul = 1664525
	lcgAdd = 1013904223

	chainInit = 0xA5
	chainStep = 0x3B
)

// Encrypt transforms data under seed. The chain value feeds on ciphertext
// bytes, so Decrypt resynchronizes without any state beyond the seed.
func Encrypt(data []byte, seed uint32) []byte {
	out := make([]byte, len(data))
	state := seed
	chain := byte(seed>>24) ^ chainInit
	for i, p := range data {
		state = state*lcgMul + lcgAdd
		c := (p + chain) ^ byte(state>>24)
		out[i] = c
		chain = c + chainStep
	}
	return out
}

// Decrypt inverts Encrypt for the same seed: Decrypt(Encrypt(b, s), s)
// returns b for any byte sequence, including empty and lengths that are
// not a multiple of any block size.
func Decrypt(data []byte, seed uint32) []byte {
	out := make([]byte, len(data))
	state := seed
	chain := byte(seed>>24) ^ chainInit
	for i, c := range data {
		state = state*lcgMul + lcgAdd
		out[i] = (c ^ byte(state>>24)) - chain
		chain = c + chainStep
	}
	return out
}
