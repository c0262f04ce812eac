package client

import (
	"github.com/imdario/mergo"

	"github.com/oakwood-net/routeros-client/wire"
)

// Config controls connection and call-level behaviour of a Client. Zero
// values are replaced by DefaultConfig's via mergo, the way
// netconf/client.Config is merged onto NewRPCSessionWithConfig callers.
type Config struct {
	// DialTimeoutSecs bounds the network dial of DialTCP and DialSSHJump.
	DialTimeoutSecs int

	// StreamBufferSize bounds a streaming call's in-process channel; the
	// reader loop blocks on a full channel rather than dropping items.
	StreamBufferSize int

	// MaxWordLength bounds a single decoded wire word.
	MaxWordLength int
}

// DefaultConfig holds the library's baseline Config values.
var DefaultConfig = Config{
	DialTimeoutSecs:  10,
	StreamBufferSize: 64,
	MaxWordLength:    wire.DefaultMaxWordLength,
}

// withDefaults fills any zero-valued field of cfg from DefaultConfig, the
// same overlay mergo performs for netconf/client.ClientConfig.
func withDefaults(cfg Config) Config {
	merged := cfg
	_ = mergo.Merge(&merged, DefaultConfig)
	return merged
}
