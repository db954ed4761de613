package utils

import (
	"encoding/binary"
	"net"
	"strings"
)

// IPToInt converts an IP address to a 32-bit integer for sorting.
// Unparseable or non-IPv4 addresses sort first.
func IPToInt(s string) uint32 {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return 0
	}
	ip = ip.To4()
	if ip == nil {
		return 0
	}
	return binary.BigEndian.Uint32(ip)
}

// IsPrivateMAC checks if a MAC address is a locally administered (private) MAC
func IsPrivateMAC(mac string) bool {
	hw, err := net.ParseMAC(mac)
	if err != nil || len(hw) == 0 {
		return false
	}
	// Check if the locally administered bit (bit 1 of the first octet) is set
	return (hw[0] & 0x02) != 0
}

// NormalizeMAC normalizes a MAC address to lowercase with colons.
// Input that does not parse is returned lowercased and trimmed.
func NormalizeMAC(mac string) string {
	mac = strings.TrimSpace(mac)
	if hwAddr, err := net.ParseMAC(mac); err == nil {
		return hwAddr.String()
	}
	return strings.ToLower(mac)
}

// MACPrefix returns the vendor prefix (first three octets) in uppercase
func MACPrefix(mac string) string {
	mac = strings.ToUpper(strings.TrimSpace(mac))
	if len(mac) > 8 {
		return mac[:8]
	}
	return mac
}

// SameMAC compares two hardware addresses ignoring case and notation
func SameMAC(a, b string) bool {
	return strings.EqualFold(NormalizeMAC(a), NormalizeMAC(b))
}
