package runner

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/cbergoon/merkletree"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/engine"
)

// stampContent implements merkletree.Content for one stamp payload.
type stampContent struct {
	stamp string
	hash  string
}

func (c stampContent) CalculateHash() ([]byte, error) {
	h := sha256.Sum256([]byte(c.stamp + "\n" + c.hash))
	return h[:], nil
}

func (c stampContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(stampContent)
	if !ok {
		return false, nil
	}
	return c.stamp == o.stamp && c.hash == o.hash, nil
}

func payloadHash(statements []string) string {
	h := sha256.Sum256([]byte(strings.Join(statements, "\n")))
	return hex.EncodeToString(h[:])
}

func emptyHash() string {
	h := sha256.Sum256(nil)
	return hex.EncodeToString(h[:])
}

// Fingerprint returns the merkle root over the baseline and every stamp
// payload. Two directories with the same fingerprint migrate a database
// identically.
func Fingerprint(baseline *engine.Baseline, migrations []engine.Migration) (string, error) {
	var contents []merkletree.Content
	if baseline != nil {
		contents = append(contents, stampContent{stamp: engine.BaselineFile, hash: payloadHash(baseline.Statements)})
	}
	for _, m := range migrations {
		contents = append(contents, stampContent{stamp: m.Stamp, hash: payloadHash(m.Statements)})
	}
	if len(contents) == 0 {
		return emptyHash(), nil
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return "", alerr.Wrap(alerr.ErrFingerprint, err, "failed to build merkle tree")
	}
	return hex.EncodeToString(tree.MerkleRoot()), nil
}
