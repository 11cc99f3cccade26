package payload

import (
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectMIME determines a MIME type using stdlib detection first and
// falling back to the broader mimetype library when ambiguous. The input
// should contain at least the first 512 bytes of content when available;
// fewer bytes are handled but may reduce accuracy.
func DetectMIME(head []byte) string {
	if len(head) == 0 {
		return "application/octet-stream"
	}
	mt := http.DetectContentType(head)
	if mt != "application/octet-stream" {
		return mt
	}
	return mimetype.Detect(head).String()
}

// IsImage reports whether the sniffed MIME type belongs to the image family.
func IsImage(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}
