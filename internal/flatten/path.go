package flatten

import (
	"fmt"
	"strings"
)

// sanitizeName replaces characters illegal on FAT32 so link names stay
// portable across filesystems.
func sanitizeName(s string) string {
	// Characters not allowed in FAT32: / \ : * ? " < > |
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
	)
	result := replacer.Replace(s)

	// Truncate to 200 chars for FAT32 safety
	if len(result) > 200 {
		result = result[:200]
	}

	return result
}

// counterName composes the nth candidate name: the base form for n 1,
// counters inserted before the extension from n 2 on.
func counterName(stem, ext string, n int) string {
	if n <= 1 {
		return stem + ext
	}
	return fmt.Sprintf("%s (%d)%s", stem, n, ext)
}
