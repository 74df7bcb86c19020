package issues

import (
	"crypto/sha256"
	"fmt"
)

// ComputeFingerprint produces a deterministic SHA-256 hex digest of the
// issue code, requirement ID, row and message. Identical issues across runs
// share a fingerprint.
func ComputeFingerprint(code, requirementID string, row int, message string) string {
	h := sha256.New()
	// Null separators keep ("ab","c") and ("a","bc") distinct.
	_, _ = fmt.Fprintf(h, "%s\x00%s\x00%d\x00%s", code, requirementID, row, message)
	return fmt.Sprintf("%x", h.Sum(nil))
}
