// Package privacy reduces personal identifiers before they reach logs.
package privacy

import (
	"fmt"
	"net"
	"strings"
)

// AnonymizeIP keeps the network part of an address: /24 for IPv4, /48 for IPv6.
// Returns "unknown" for empty input and "invalid" for unparseable input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

// MaskContact keeps the first character of the local part and the domain of an
// email-like contact ("ada@example.com" -> "a***@example.com"). Other
// identifiers keep only their first character.
func MaskContact(contact string) string {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return ""
	}
	local, domain, ok := strings.Cut(contact, "@")
	if !ok || local == "" {
		return contact[:1] + "***"
	}
	return local[:1] + "***@" + domain
}
