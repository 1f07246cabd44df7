package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo is the parsed User-Agent attached to request logs
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop, cli
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	BrowserVer string `json:"browser_ver"`
	IsBot      bool   `json:"is_bot"`
	Platform   string `json:"platform"` // android, ios, windows, mac, linux
}

// cliAgents are the User-Agent prefixes sent by non-browser admin clients,
// including the homestay-editor CLI
var cliAgents = []string{"homestay-editor", "curl", "go-http-client", "postmanruntime"}

var tabletIndicators = []string{"ipad", "tablet", "kindle", "playbook", "nexus 7", "nexus 9", "nexus 10", "xoom", "sm-t"}

var platforms = []struct{ match, platform string }{
	{"android", "android"},
	{"iphone os", "ios"},
	{"ios", "ios"},
	{"windows", "windows"},
	{"mac os x", "mac"},
	{"macos", "mac"},
	{"chrome os", "chromeos"},
	{"ubuntu", "linux"},
	{"linux", "linux"},
}

// ParseUserAgent extracts device information from a User-Agent header
func ParseUserAgent(userAgent string) DeviceInfo {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return DeviceInfo{DeviceType: "unknown", OS: "Unknown", Browser: "Unknown", Platform: "unknown"}
	}

	lower := strings.ToLower(userAgent)
	for _, prefix := range cliAgents {
		if strings.HasPrefix(lower, prefix) {
			name, version, _ := strings.Cut(userAgent, "/")
			return DeviceInfo{DeviceType: "cli", OS: "Unknown", Browser: name, BrowserVer: version, Platform: "unknown"}
		}
	}

	parser := ua.New(userAgent)
	name, version := parser.Browser()
	if name == "" {
		name = "Unknown"
	}

	return DeviceInfo{
		DeviceType: deviceType(parser, lower),
		OS:         osName(parser),
		Browser:    name,
		BrowserVer: version,
		IsBot:      parser.Bot(),
		Platform:   platform(parser),
	}
}

func deviceType(parser *ua.UserAgent, lower string) string {
	for _, indicator := range tabletIndicators {
		if strings.Contains(lower, indicator) {
			return "tablet"
		}
	}
	if parser.Mobile() {
		return "mobile"
	}
	return "desktop"
}

func osName(parser *ua.UserAgent) string {
	info := parser.OSInfo()
	if info.Name == "" {
		return "Unknown"
	}
	if info.Version != "" {
		return info.Name + " " + info.Version
	}
	return info.Name
}

func platform(parser *ua.UserAgent) string {
	name := strings.ToLower(parser.OSInfo().Name)
	for _, p := range platforms {
		if strings.Contains(name, p.match) {
			return p.platform
		}
	}
	return "unknown"
}
