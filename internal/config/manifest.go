package config

import (
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// Proxy is the optional proxy block of a toolset manifest. Any subset of the
// three fields may be present.
type Proxy struct {
	HTTP    string `toml:"http"`
	HTTPS   string `toml:"https"`
	NoProxy string `toml:"no-proxy"`
}

// Toolchain declares the default toolchain to bootstrap.
type Toolchain struct {
	Channel    string   `toml:"channel"`
	Components []string `toml:"components"`
}

// ToolKind tags the source variant of a tool descriptor.
type ToolKind int

const (
	// KindVersion installs via the package manager at a plain version.
	KindVersion ToolKind = iota
	// KindVersionDetailed is KindVersion with extra metadata.
	KindVersionDetailed
	// KindGit installs via the package manager from a git ref.
	KindGit
	// KindLocalPath installs from an existing file or directory.
	KindLocalPath
	// KindRemote downloads an artifact first, then installs it like a local path.
	KindRemote
)

// ToolDescriptor is the tagged descriptor of a single tool entry. Only the
// fields matching Kind are meaningful.
type ToolDescriptor struct {
	Kind ToolKind

	Version string
	Git     string
	Branch  string
	Tag     string
	Rev     string
	Path    string
	URL     string

	// Optional tools may fail to install without failing the run.
	Optional bool
}

// IsManaged reports whether the tool is installed through the package manager
// and therefore requires the toolchain to be bootstrapped first.
func (d ToolDescriptor) IsManaged() bool {
	switch d.Kind {
	case KindVersion, KindVersionDetailed, KindGit:
		return true
	default:
		return false
	}
}

// ToolsetManifest is the parsed toolset manifest: an optional proxy block,
// the default toolchain declaration, and a target → tool-name → descriptor
// mapping.
type ToolsetManifest struct {
	Proxy     *Proxy
	Toolchain Toolchain
	Tools     map[string]map[string]ToolDescriptor
}

// rawManifest is the direct TOML shape. Tool values are heterogeneous (plain
// version strings or tables), so they decode into `any` first.
type rawManifest struct {
	Proxy     *Proxy                    `toml:"proxy"`
	Toolchain Toolchain                 `toml:"toolchain"`
	Tools     map[string]map[string]any `toml:"tools"`
}

// HostTarget returns the manifest target key for the running host,
// e.g. "linux-amd64".
func HostTarget() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}

// LoadManifest reads and parses a toolset manifest from path.
func LoadManifest(path string) (*ToolsetManifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read toolset manifest %s: %w", path, err)
	}
	m, err := ParseManifest(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse toolset manifest %s: %w", path, err)
	}
	return m, nil
}

// ParseManifest parses TOML manifest bytes.
func ParseManifest(data []byte) (*ToolsetManifest, error) {
	var raw rawManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	m := &ToolsetManifest{
		Proxy:     raw.Proxy,
		Toolchain: raw.Toolchain,
		Tools:     make(map[string]map[string]ToolDescriptor),
	}
	for target, tools := range raw.Tools {
		converted := make(map[string]ToolDescriptor, len(tools))
		for name, value := range tools {
			desc, err := descriptorFromValue(value)
			if err != nil {
				return nil, fmt.Errorf("tool %q for target %q: %w", name, target, err)
			}
			converted[name] = desc
		}
		m.Tools[target] = converted
	}
	return m, nil
}

// CurrentTargetTools returns the tools declared for the running host. Entries
// under the special "default" target apply to every host and are overridden
// by target-specific entries of the same name.
func (m *ToolsetManifest) CurrentTargetTools() map[string]ToolDescriptor {
	tools := make(map[string]ToolDescriptor)
	for name, desc := range m.Tools["default"] {
		tools[name] = desc
	}
	for name, desc := range m.Tools[HostTarget()] {
		tools[name] = desc
	}
	return tools
}

// SortedToolNames returns the tool names of a descriptor map in a stable
// order, so installation and progress output are deterministic.
func SortedToolNames(tools map[string]ToolDescriptor) []string {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// descriptorFromValue converts one decoded tool entry into its tagged form.
// A bare string is a plain version; a table is classified by which source
// field it carries.
func descriptorFromValue(value any) (ToolDescriptor, error) {
	switch v := value.(type) {
	case string:
		return ToolDescriptor{Kind: KindVersion, Version: v}, nil
	case map[string]any:
		desc := ToolDescriptor{}
		desc.Optional, _ = v["optional"].(bool)
		switch {
		case hasString(v, "git"):
			desc.Kind = KindGit
			desc.Git = stringField(v, "git")
			desc.Branch = stringField(v, "branch")
			desc.Tag = stringField(v, "tag")
			desc.Rev = stringField(v, "rev")
		case hasString(v, "path"):
			desc.Kind = KindLocalPath
			desc.Path = stringField(v, "path")
		case hasString(v, "url"):
			desc.Kind = KindRemote
			desc.URL = stringField(v, "url")
		case hasString(v, "ver"), hasString(v, "version"):
			desc.Kind = KindVersionDetailed
			desc.Version = stringField(v, "ver")
			if desc.Version == "" {
				desc.Version = stringField(v, "version")
			}
		default:
			return desc, fmt.Errorf("tool entry has none of version/git/path/url")
		}
		return desc, nil
	default:
		return ToolDescriptor{}, fmt.Errorf("unsupported tool entry type %T", value)
	}
}

func hasString(table map[string]any, key string) bool {
	s, ok := table[key].(string)
	return ok && s != ""
}

func stringField(table map[string]any, key string) string {
	s, _ := table[key].(string)
	return s
}
