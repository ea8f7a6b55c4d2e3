package config

import (
	"encoding/json" // JSON encoding and decoding of the receipt file
	"os"
	"path/filepath"

	"toolenv-installer/internal/logger"
)

// ReceiptFile is the name of the install receipt, stored in the package
// manager home so the uninstaller can find it next to config.toml.
const ReceiptFile = "receipt.json"

// Tool install kinds recorded in the receipt.
const (
	RecordKindManaged    = "managed" // installed through the package manager
	RecordKindDispatched = "tool"    // generic strategy into tools/<name>
	RecordKindCustom     = "custom"  // installed by a custom recipe
)

// ToolRecord is the saved state of one installed tool.
type ToolRecord struct {
	Version     string `json:"version,omitempty"`      // Version or ref that was requested
	InstallPath string `json:"install_path,omitempty"` // Where the tool ended up, empty for managed tools
	Kind        string `json:"kind"`                   // One of the RecordKind constants
}

// Receipt records everything this installer put on the machine. Uninstall
// walks it to know which custom recipes to reverse and which tools/<name>
// entries belong to us.
type Receipt struct {
	Tools map[string]ToolRecord `json:"tools"` // Map from tool name to its record
}

// ReceiptPath returns the receipt location under the layout's pkg home.
func (l *PathLayout) ReceiptPath() (string, error) {
	home, err := l.PkgHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ReceiptFile), nil
}

// LoadReceipt loads the receipt from path. A missing or unreadable file
// yields a fresh empty receipt; the Tools map is always non-nil.
func LoadReceipt(path string) *Receipt {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &Receipt{Tools: make(map[string]ToolRecord)}
	}

	var r Receipt
	_ = json.Unmarshal(raw, &r)
	if r.Tools == nil {
		r.Tools = make(map[string]ToolRecord)
	}
	return &r
}

// SaveReceipt writes the receipt as indented JSON. Errors are logged but not
// propagated, a failed receipt write should not fail the installation itself.
func SaveReceipt(path string, r *Receipt) {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		logger.Error("[ERROR] Failed to marshal install receipt: %v\n", err)
		return
	}

	logger.Debug("[DEBUG] Writing install receipt to %s\n", path)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		logger.Error("[ERROR] Failed to write install receipt %s: %v\n", path, err)
	}
}
