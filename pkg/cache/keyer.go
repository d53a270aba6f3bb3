package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Keyer generates cache keys.
type Keyer interface {
	// SessionKey is the key of a saved editing session.
	SessionKey(sessionID string) string

	// ArtifactKey is the key of a rendered canvas, identified by the hash
	// of its snapshot.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format  string `json:"format"`
	Values  bool   `json:"values"`
	RankDir string `json:"rank_dir"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SessionKey returns "session:<id>".
func (DefaultKeyer) SessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// ArtifactKey returns "artifact:<digest>", where digest covers the snapshot
// hash and every render option.
func (DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	parts := snapshotHash + "\x00" + opts.Format + "\x00" + strconv.FormatBool(opts.Values) + "\x00" + opts.RankDir
	return "artifact:" + Hash([]byte(parts))
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
