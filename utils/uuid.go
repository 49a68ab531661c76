package utils

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DocumentUUID derives a deterministic version 5 UUID from a document's
// natural key, so re-ingesting the same file yields the same identifier.
// Key strings are trimmed and lowercased before hashing. Pass pageNum < 0
// for a document-level UUID, or a page number for a page-level one.
func DocumentUUID(namespace uuid.UUID, sourceFileName, correspondenceType, caseRef string, pageNum int) string {
	parts := []string{
		normalizeKey(sourceFileName),
		normalizeKey(correspondenceType),
		normalizeKey(caseRef),
	}
	if pageNum >= 0 {
		parts = append(parts, strconv.Itoa(pageNum))
	}

	data := strings.Join(parts, "-")
	return uuid.NewSHA1(namespace, []byte(data)).String()
}

// ChunkUUID derives a deterministic UUID for a chunk from its globally
// unique chunk id, used as the search index object identifier.
func ChunkUUID(namespace uuid.UUID, chunkID string) string {
	return uuid.NewSHA1(namespace, []byte(chunkID)).String()
}

func normalizeKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
