package modules

import (
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// LibManifest maps an extern declaration's library name (the string in
// `extern "libm" fn ...`) to the platform-specific shared library file
// the FFI loader should dlopen, read from an optional `atlas.lib.yaml`
// next to the project root.
type LibManifest struct {
	Libraries map[string]PlatformLibs `yaml:"libraries"`
}

// PlatformLibs names the shared-library file for each platform this
// manifest was written for. An empty field falls back to the extern
// declaration's own library name unchanged.
type PlatformLibs struct {
	Linux   string `yaml:"linux"`
	Darwin  string `yaml:"darwin"`
	Windows string `yaml:"windows"`
}

// Resolve returns the shared-library file name to dlopen for the given
// extern library name, applying this manifest's platform override if
// one is configured.
func (m *LibManifest) Resolve(name string) string {
	if m == nil {
		return name
	}
	p, ok := m.Libraries[name]
	if !ok {
		return name
	}
	switch runtime.GOOS {
	case "darwin":
		if p.Darwin != "" {
			return p.Darwin
		}
	case "windows":
		if p.Windows != "" {
			return p.Windows
		}
	default:
		if p.Linux != "" {
			return p.Linux
		}
	}
	return name
}

// LoadManifest reads and parses an atlas.lib.yaml file. A missing file is
// not an error: callers get a nil manifest and Resolve falls back to the
// extern declaration's literal library name.
func LoadManifest(path string) (*LibManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var m LibManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
