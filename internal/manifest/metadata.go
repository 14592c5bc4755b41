package manifest

import (
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Logical keys for the two entries every build must produce.
const (
	AppEntry = "app"
	HMREntry = "hmr"
)

// OutputDescriptor locates one emitted file. OutputPath is slash separated and
// relative to the project root.
type OutputDescriptor struct {
	OutputPath string `json:"output_path"`
	Size       int64  `json:"size"`
}

// Metadata maps logical keys (entry names and module source paths) to the
// file that carries them in one generation.
type Metadata map[string]OutputDescriptor

// Keys returns the logical keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fingerprint hashes keys and output paths. Two generations with identical
// outputs share a fingerprint.
func (m Metadata) Fingerprint() uint64 {
	d := xxhash.New()
	for _, k := range m.Keys() {
		_, _ = d.WriteString(k)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(m[k].OutputPath)
		_, _ = d.Write([]byte{'\n'})
	}
	return d.Sum64()
}
