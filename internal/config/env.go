package config

// Names of the environment variables persisted by the installer. The two URL
// keys point chainup at the configured distribution mirror; the two home keys
// relocate the package manager and toolchain into the install directory.
const (
	EnvDistServer    = "DIST_SERVER"
	EnvUpdateRoot    = "UPDATE_ROOT"
	EnvPkgHome       = "PKG_HOME"
	EnvToolchainHome = "TOOLCHAIN_HOME"
)

// AllEnvKeys lists every variable the installer may have persisted,
// proxy keys included. Uninstall removes the whole set.
var AllEnvKeys = []string{
	EnvDistServer,
	EnvUpdateRoot,
	EnvPkgHome,
	EnvToolchainHome,
	"http_proxy",
	"https_proxy",
	"no_proxy",
}

// EnvVar is a single name=value environment binding.
type EnvVar struct {
	Name  string
	Value string
}

// EnvVars composes the ordered list of environment bindings to persist.
// The distribution URLs are always emitted, defaults included, so a later
// uninstall can remove the full set without guessing. Proxy bindings are
// appended when the manifest declares them.
func (c *InstallConfiguration) EnvVars(proxy *Proxy) ([]EnvVar, error) {
	pkgHome, err := c.layout.PkgHome()
	if err != nil {
		return nil, err
	}
	toolchainHome, err := c.layout.ToolchainHome()
	if err != nil {
		return nil, err
	}

	vars := []EnvVar{
		{EnvDistServer, c.DistServer},
		{EnvUpdateRoot, c.UpdateRoot},
		{EnvPkgHome, pkgHome},
		{EnvToolchainHome, toolchainHome},
	}

	if proxy != nil {
		if proxy.HTTP != "" {
			vars = append(vars, EnvVar{"http_proxy", proxy.HTTP})
		}
		if proxy.HTTPS != "" {
			vars = append(vars, EnvVar{"https_proxy", proxy.HTTPS})
		}
		if proxy.NoProxy != "" {
			vars = append(vars, EnvVar{"no_proxy", proxy.NoProxy})
		}
	}

	return vars, nil
}
