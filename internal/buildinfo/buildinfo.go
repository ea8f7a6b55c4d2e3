// Package buildinfo carries build-time metadata injected by the linker.
package buildinfo

// Profile is the build profile. Debug builds are produced with
//
//	go build -ldflags "-X toolenv-installer/internal/buildinfo.Profile=debug"
//
// and enable dev-only behavior such as promoting the installer binary into
// the package manager bin directory.
var Profile = "release"
