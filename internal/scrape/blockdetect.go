package scrape

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of anti-automation challenge detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

// Challenge-page markers the people-search sites serve to suspected bots.
var captchaMarkers = []string{
	"captcha",
	"recaptcha",
	"hcaptcha",
	"press & hold",
	"press and hold",
	"are you a human",
	"unusual activity",
	"verify you are human",
}

// DetectBlock checks an HTTP response for signs of anti-bot protection.
// Status-code handling stays with the caller; this looks at headers and
// page content only.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	// Cloudflare interposes with 403/503 and cf-* headers.
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-cache-status") != "" {
			return true, BlockCloudflare
		}
		if resp.Header.Get("server") == "cloudflare" {
			return true, BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") {
		return true, BlockCloudflare
	}

	for _, marker := range captchaMarkers {
		if strings.Contains(lower, marker) {
			return true, BlockCaptcha
		}
	}

	// JS-only shell: a near-empty body that demands script execution.
	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return true, BlockJSShell
		}
		if strings.Contains(lower, `meta http-equiv="refresh"`) {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}
