package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// CanonicalQuery sorts parameter keys, percent-encodes keys and values and joins them with '&'.
// Every signed request is built through this function.
func CanonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(params[k]))
	}

	return sb.String()
}

// HMACSign returns the hex HMAC-SHA256 digest of a canonical query string.
func HMACSign(canonicalQuery string, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonicalQuery))
	return hex.EncodeToString(mac.Sum(nil))
}
