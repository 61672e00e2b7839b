package fetch

import "strings"

// BlockType describes the kind of anti-bot block detected on a 200 page.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockRobotCheck BlockType = "robot_check"
	BlockJSShell    BlockType = "js_shell"
)

// DetectBlock checks a successfully fetched body for signs of a bot
// challenge served with a 200 status. Such pages carry no product data, so
// callers treat them as transient failures.
func DetectBlock(body []byte) (bool, BlockType) {
	lower := strings.ToLower(string(body))

	// Cloudflare challenge page markers.
	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		(strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge")) {
		return true, BlockCloudflare
	}

	// Amazon's interstitial when it suspects automation.
	if strings.Contains(lower, "enter the characters you see below") ||
		strings.Contains(lower, "to discuss automated access to amazon data") {
		return true, BlockRobotCheck
	}

	// Captcha markers.
	if strings.Contains(lower, "recaptcha") ||
		strings.Contains(lower, "hcaptcha") ||
		strings.Contains(lower, "geetest") {
		return true, BlockCaptcha
	}

	// JS-only shell: very small body with noscript or meta refresh.
	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return true, BlockJSShell
		}
		if strings.Contains(lower, "meta http-equiv=\"refresh\"") {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}
