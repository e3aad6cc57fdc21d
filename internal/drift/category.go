package drift

import "fmt"

// Category identifies one class of supply-chain observation. The set is
// closed: baseline files and tracker labels both key off these names.
type Category string

const (
	CategoryScriptHosts     Category = "script-hosts"
	CategoryXHRHosts        Category = "xhr-hosts"
	CategoryWebSocketHosts  Category = "websocket-hosts"
	CategoryWebWorkerHosts  Category = "webworker-hosts"
	CategoryObfuscatedHosts Category = "obfuscated-script-hosts"
	CategorySuspiciousHosts Category = "suspicious-script-hosts"
)

// Categories returns every category in stable report order.
func Categories() []Category {
	return []Category{
		CategoryScriptHosts,
		CategoryXHRHosts,
		CategoryWebSocketHosts,
		CategoryWebWorkerHosts,
		CategoryObfuscatedHosts,
		CategorySuspiciousHosts,
	}
}

// ParseCategory validates a category name read from external input
// (baseline files, tracker labels).
func ParseCategory(name string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", name)
}

// Label returns the tracker label used for this category's issue.
func (c Category) Label() string {
	return "supplywatch/" + string(c)
}

// Title returns a human-readable name for report and issue output.
func (c Category) Title() string {
	switch c {
	case CategoryScriptHosts:
		return "Script hosts"
	case CategoryXHRHosts:
		return "XHR hosts"
	case CategoryWebSocketHosts:
		return "WebSocket hosts"
	case CategoryWebWorkerHosts:
		return "Web worker hosts"
	case CategoryObfuscatedHosts:
		return "Obfuscated script hosts"
	case CategorySuspiciousHosts:
		return "Suspicious script hosts"
	}
	return string(c)
}
