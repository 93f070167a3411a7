package middleware

import (
	"net"
	"strings"

	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SwaggerConfig holds configuration for Swagger endpoint protection
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // IPs or CIDRs; empty allows all
}

// SwaggerProtection hides the API docs when disabled and restricts them to
// the configured addresses otherwise
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	allowedIPs, allowedNets := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			abortWithError(c, dto.ErrCodeNotFound, "API documentation is not available")
			return
		}
		if len(cfg.AllowedIPs) > 0 && !isIPAllowed(net.ParseIP(c.ClientIP()), allowedIPs, allowedNets) {
			abortWithError(c, dto.ErrCodeForbidden, "Access to API documentation is restricted")
			return
		}
		c.Next()
	}
}

// parseAllowList splits entries into single addresses and networks.
// Unparseable entries are ignored.
func parseAllowList(entries []string) ([]net.IP, []*net.IPNet) {
	var ips []net.IP
	var nets []*net.IPNet
	for _, s := range entries {
		if strings.Contains(s, "/") {
			if _, n, err := net.ParseCIDR(s); err == nil {
				nets = append(nets, n)
			}
			continue
		}
		if ip := net.ParseIP(s); ip != nil {
			ips = append(ips, ip)
		}
	}
	return ips, nets
}

func isIPAllowed(ip net.IP, allowedIPs []net.IP, allowedNets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range allowedIPs {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, n := range allowedNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
