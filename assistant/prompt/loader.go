package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/system.txt
var systemRaw string

// System returns the system prompt sent with every chat-fallback call.
func System() string {
	return strings.TrimSpace(systemRaw)
}
