package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

func extractPlaintext(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("unsupported binary content")
	}
	return strings.TrimSpace(string(raw)), nil
}
