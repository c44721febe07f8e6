package cache

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/sitesmith-ai/sitesmith/pkg/types"
)

// attachmentPrefixLen bounds how much of each attachment is hashed. Hashing
// full attachments would dominate fingerprint cost for image-heavy requests.
const attachmentPrefixLen = 512

// Fingerprint hashes a normalized projection of the request: prompt, each
// existing file, the environment mapping in sorted key order, the mode, and
// a bounded prefix of each attachment. xxhash is non-cryptographic; a
// collision only costs response quality, never correctness.
func Fingerprint(req *types.GenerationRequest) string {
	h := xxhash.New()

	writeField(h, req.Prompt)
	writeField(h, string(req.Mode))

	for _, f := range req.ExistingFiles {
		writeField(h, f.Name)
		writeField(h, f.Language)
		writeField(h, f.Content)
	}

	keys := make([]string, 0, len(req.Environment))
	for k := range req.Environment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeField(h, k)
		writeField(h, req.Environment[k])
	}

	for _, att := range req.Attachments {
		writeField(h, att.MediaType)
		prefix := att.Data
		if len(prefix) > attachmentPrefixLen {
			prefix = prefix[:attachmentPrefixLen]
		}
		h.Write(prefix)
		h.Write([]byte{0})
	}

	return fmt.Sprintf("%016x", h.Sum64())
}

// writeField writes a NUL-terminated field so adjacent values cannot run
// together and collide.
func writeField(h *xxhash.Digest, s string) {
	h.WriteString(s)
	h.Write([]byte{0})
}
