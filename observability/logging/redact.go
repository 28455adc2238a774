package logging

import (
	"log/slog"
	"net"
	"sort"
	"strings"
)

// RedactedValue is the canonical placeholder used for sensitive fields in logs.
const RedactedValue = "[REDACTED]"

var redactionAllowlist = map[string]struct{}{
	"service":    {},
	"env":        {},
	"message":    {},
	"severity":   {},
	"timestamp":  {},
	"error":      {},
	"method":     {},
	"code":       {},
	"duration":   {},
	"request_id": {},
	"block":      {},
}

// IsAllowlisted reports whether the provided key is exempt from automatic redaction.
func IsAllowlisted(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	_, ok := redactionAllowlist[normalized]
	return ok
}

// RedactionAllowlist returns a sorted copy of the keys emitted without
// redaction.
func RedactionAllowlist() []string {
	keys := make([]string, 0, len(redactionAllowlist))
	for key := range redactionAllowlist {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// MaskField returns a slog.Attr that redacts the supplied value unless the key is
// explicitly allowlisted. The original key casing is preserved for readability.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || IsAllowlisted(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}

// MaskRemote keeps the network of a client address and drops the host part:
// the last octet of IPv4 and everything past the /48 of IPv6.
func MaskRemote(key, remote string) slog.Attr {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	ip := net.ParseIP(strings.TrimSpace(host))
	if ip == nil {
		return MaskField(key, remote)
	}
	if v4 := ip.To4(); v4 != nil {
		return slog.String(key, net.IPv4(v4[0], v4[1], v4[2], 0).String())
	}
	return slog.String(key, ip.Mask(net.CIDRMask(48, 128)).String())
}
