package trajectory

import "regexp"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeName makes an identifier safe to use as a path segment by
// replacing every character outside [A-Za-z0-9._-] with an underscore.
// The frame paths inside a record and its image_folder field must come
// from this same function or they stop resolving against each other.
func SanitizeName(value string) string {
	return unsafeNameChars.ReplaceAllString(value, "_")
}
