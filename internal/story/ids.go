package story

import (
	"crypto/sha256"
	"encoding/hex"

	"vulncomics/internal/types"
)

// ActiveID is stable for a (finding, package, version) triple.
func ActiveID(v types.Vulnerability) string {
	return hashID(v.ID + ":" + v.PackageName + ":" + v.PackageVersion)
}

// HistoricalID is stable per package name.
func HistoricalID(packageName string) string {
	return hashID("historical:" + packageName)
}

func hashID(data string) string {
	sum := sha256.Sum256([]byte(data))
	return "story_" + hex.EncodeToString(sum[:])[:12]
}
