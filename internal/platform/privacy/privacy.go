// Package privacy masks personal data before it reaches request logs.
package privacy

import (
	"fmt"
	"net"
	"strings"
)

// MaskEmail keeps the first character of the local part and the domain:
// "alice@club.org" becomes "a***@club.org". Values without an "@" are fully masked.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// AnonymizeAddr truncates a remote address to its network: IPv4 to /24 and
// IPv6 to /48. A port, if present, is dropped.
func AnonymizeAddr(addr string) string {
	if addr == "" {
		return "unknown"
	}
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return "invalid"
	}
	if v4 := ip.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}
	masked := make(net.IP, net.IPv6len)
	copy(masked, ip[:6])
	return masked.String()
}
