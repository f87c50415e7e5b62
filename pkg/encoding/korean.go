// Package encoding converts the EUC-KR text stored in Ragnarok Online
// archives.
package encoding

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// EUCKRToUTF8 decodes EUC-KR bytes. ASCII passes through untouched and
// undecodable input is returned as-is.
func EUCKRToUTF8(data []byte) string {
	if isASCII(data) {
		return string(data)
	}
	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// UTF8ToEUCKR encodes s as EUC-KR, returning the UTF-8 bytes unchanged when s
// has runes EUC-KR cannot represent.
func UTF8ToEUCKR(s string) []byte {
	out, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}

// NormalizeGRFPath converts a GRF path to its case-insensitive lookup form:
// forward slashes, lower case, no leading slash.
func NormalizeGRFPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(strings.ToLower(p), "/")
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
