package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	DatasetFingerprint    Hash
	ComparisonFingerprint Hash
)

// Constructors
func NewDatasetFingerprint(data []byte) DatasetFingerprint {
	return DatasetFingerprint(NewHash(data))
}

func NewComparisonFingerprint(data []byte) ComparisonFingerprint {
	return ComparisonFingerprint(NewHash(data))
}

// String conversions
func (h DatasetFingerprint) String() string    { return Hash(h).String() }
func (h ComparisonFingerprint) String() string { return Hash(h).String() }

// ComputeDatasetFingerprint derives a deterministic fingerprint from column
// names and row count. Column order does not matter.
func ComputeDatasetFingerprint(columns []string, rows int) DatasetFingerprint {
	sorted := make([]string, len(columns))
	copy(sorted, columns)
	sort.Strings(sorted)

	var data strings.Builder
	for _, name := range sorted {
		data.WriteString(name)
		data.WriteString("|")
	}
	data.WriteString(fmt.Sprintf("n=%d", rows))

	return NewDatasetFingerprint([]byte(data.String()))
}
