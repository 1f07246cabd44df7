package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

var privateRanges = mustParseCIDRs("10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "fc00::/7")

// ClientIP returns the address of the admin making the request.
//
// X-Real-IP wins when it carries a public address. Otherwise the first public
// entry of X-Forwarded-For is used, then the first valid entry, and finally
// gin's own ClientIP.
func ClientIP(c *gin.Context) string {
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); isPublic(realIP) {
		return realIP
	}

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		for _, part := range parts {
			if ip := strings.TrimSpace(part); isPublic(ip) {
				return ip
			}
		}
		if first := strings.TrimSpace(parts[0]); net.ParseIP(first) != nil {
			return first
		}
	}

	return c.ClientIP()
}

// IsLocalhost reports whether ip is a loopback address
func IsLocalhost(ip string) bool {
	if ip == "localhost" {
		return true
	}
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}

func isPublic(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() {
		return false
	}
	for _, subnet := range privateRanges {
		if subnet.Contains(parsed) {
			return false
		}
	}
	return true
}

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, subnet, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		nets = append(nets, subnet)
	}
	return nets
}
