package comic

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Hash derives the public comic id from its title and generation time.
func Hash(title string, at time.Time) string {
	sum := sha256.Sum256([]byte(title + ":" + at.UTC().Format(time.RFC3339Nano)))
	return "com_" + hex.EncodeToString(sum[:])[:12]
}

// PagePath is the content-addressed storage path of one page image.
func PagePath(comicHash string, pageNumber int, data []byte, mimeType string) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("pages/%s_p%02d_%s.%s", comicHash, pageNumber, hex.EncodeToString(sum[:])[:12], extFor(mimeType))
}

func extFor(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

// ShareURL is the frontend link for a comic.
func ShareURL(frontendURL, comicHash string) string {
	return strings.TrimRight(frontendURL, "/") + "/c/" + comicHash
}
