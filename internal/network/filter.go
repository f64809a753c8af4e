package network

import (
	"fmt"
	"net"
	"strings"

	"github.com/rollcall-app/rollcall/internal/config"
	"go.uber.org/zap"
)

// Decision is the admission verdict for one origin. Denials always carry a
// human-readable reason; the filter itself never fails.
type Decision struct {
	Allowed bool
	Reason  string
}

// Filter classifies request origins against the configured admission policy.
type Filter struct {
	policy   config.AdmissionPolicy
	serverIP string
	prefix   string
}

// interface names tried first when discovering the server's LAN address.
var preferredInterfaces = []string{"wi-fi", "ethernet", "eth0", "wlan0", "en0"}

// NewFilter discovers the server's local address (unless overridden) and
// derives the allowed /24 prefix.
func NewFilter(cfg config.AdmissionConfig, logger *zap.Logger) *Filter {
	serverIP := strings.TrimSpace(cfg.ServerIP)
	if serverIP == "" {
		serverIP = discoverServerIP()
	}
	f := &Filter{
		policy:   cfg.Policy,
		serverIP: serverIP,
		prefix:   networkPrefix(serverIP),
	}
	if logger != nil {
		logger.Info("network admission configured",
			zap.String("policy", string(cfg.Policy)),
			zap.String("server_ip", f.serverIP),
			zap.String("allowed_subnet", f.AllowedSubnet()),
		)
	}
	return f
}

// Policy returns the configured admission policy.
func (f *Filter) Policy() config.AdmissionPolicy { return f.policy }

// ServerIP returns the address admission is anchored on.
func (f *Filter) ServerIP() string { return f.serverIP }

// AllowedSubnet returns the CIDR admitted under the subnet policy.
func (f *Filter) AllowedSubnet() string { return f.prefix + ".0/24" }

// Check decides whether clientIP may act. authorizedOrigin is the active
// session's recorded host IP; it is only consulted under the session-lock
// policy, where an empty value means no session has pinned an origin yet.
func (f *Filter) Check(clientIP, authorizedOrigin string) Decision {
	ip := NormalizeIP(clientIP)
	if ip == "" || ip == "unknown" {
		return Decision{Allowed: false, Reason: "Could not determine client IP address"}
	}
	if isLoopback(ip) {
		return Decision{Allowed: true}
	}

	if f.policy == config.PolicySessionLock {
		origin := NormalizeIP(authorizedOrigin)
		if origin == "" || ip == origin {
			return Decision{Allowed: true}
		}
		return Decision{
			Allowed: false,
			Reason: fmt.Sprintf("Access denied: client IP (%s) does not match the session origin (%s). "+
				"Only the device that started this session may submit.", ip, origin),
		}
	}

	if strings.Contains(ip, ":") {
		// Non-mapped IPv6 peers have no /24 to compare; treat as foreign.
		return f.denySubnet(ip)
	}
	if networkPrefix(ip) != f.prefix {
		return f.denySubnet(ip)
	}
	return Decision{Allowed: true}
}

func (f *Filter) denySubnet(ip string) Decision {
	return Decision{
		Allowed: false,
		Reason: fmt.Sprintf("Access denied: client IP (%s) is not on the same network as the server (%s). "+
			"Only devices on the same Wi-Fi network can access this system.", ip, f.serverIP),
	}
}

// NormalizeIP strips IPv4-mapped IPv6 notation and surrounding whitespace.
func NormalizeIP(raw string) string {
	ip := strings.TrimSpace(raw)
	if strings.HasPrefix(ip, "::ffff:") {
		ip = ip[len("::ffff:"):]
	}
	return ip
}

func isLoopback(ip string) bool {
	if ip == "127.0.0.1" || ip == "::1" {
		return true
	}
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}

// networkPrefix returns the first three octets of an IPv4 address, the /24
// identity used for subnet matching.
func networkPrefix(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) == 4 {
		return strings.Join(parts[:3], ".")
	}
	return ip
}

// discoverServerIP returns the server's non-loopback IPv4 address, preferring
// common LAN interface names and falling back to any non-loopback IPv4.
func discoverServerIP() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "127.0.0.1"
	}

	for _, preferred := range preferredInterfaces {
		for _, iface := range ifaces {
			if !strings.Contains(strings.ToLower(iface.Name), preferred) {
				continue
			}
			if ip := firstIPv4(iface); ip != "" {
				return ip
			}
		}
	}
	for _, iface := range ifaces {
		if ip := firstIPv4(iface); ip != "" {
			return ip
		}
	}
	return "127.0.0.1"
}

func firstIPv4(iface net.Interface) string {
	if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
		return ""
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil && !v4.IsLoopback() {
			return v4.String()
		}
	}
	return ""
}
