package fetch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBlock(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		blocked bool
		kind    BlockType
	}{
		{
			name:    "cloudflare challenge",
			body:    "<html><title>Just a moment</title>Checking your browser before accessing</html>",
			blocked: true,
			kind:    BlockCloudflare,
		},
		{
			name:    "amazon robot check",
			body:    "<html><h4>Enter the characters you see below</h4></html>",
			blocked: true,
			kind:    BlockRobotCheck,
		},
		{
			name:    "recaptcha",
			body:    "<html><div class=\"g-recaptcha\" data-sitekey=\"x\"></div></html>",
			blocked: true,
			kind:    BlockCaptcha,
		},
		{
			name:    "tiny js shell",
			body:    "<html><noscript>Please enable JavaScript</noscript></html>",
			blocked: true,
			kind:    BlockJSShell,
		},
		{
			name:    "normal product page",
			body:    "<html><h1>Titan Watch</h1><div class=\"a-price-whole\">2,499</div>" + strings.Repeat("<p>specs</p>", 400) + "</html>",
			blocked: false,
			kind:    BlockNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, kind := DetectBlock([]byte(tt.body))
			assert.Equal(t, tt.blocked, blocked)
			assert.Equal(t, tt.kind, kind)
		})
	}
}
