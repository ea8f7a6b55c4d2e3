package installer

import (
	"os"
	"path/filepath"
	"strings"

	"toolenv-installer/internal/config"
)

// recordingExecutor remembers every invocation instead of spawning
// processes. fail, when set, is returned for matching programs.
type recordingExecutor struct {
	calls    [][]string
	failFor  string
	failWith error
}

func (e *recordingExecutor) Run(program string, args ...string) error {
	e.calls = append(e.calls, append([]string{program}, args...))
	if e.failFor != "" && strings.Contains(program, e.failFor) {
		return e.failWith
	}
	return nil
}

type fetchCall struct {
	Name  string
	URL   string
	Dest  string
	Proxy *config.Proxy
}

// stubFetcher records download requests and materializes dest so the
// pipeline after it has a real file to work with.
type stubFetcher struct {
	calls []fetchCall
	fail  error
}

func (f *stubFetcher) Download(name, url, dest string, proxy *config.Proxy) error {
	f.calls = append(f.calls, fetchCall{Name: name, URL: url, Dest: dest, Proxy: proxy})
	if f.fail != nil {
		return f.fail
	}
	return os.WriteFile(dest, []byte("payload"), 0644)
}

// stubExtractor treats ".tar.gz" as the only archive kind and records what
// it was asked to extract, dropping a marker file into dest.
type stubExtractor struct {
	extracted []string
}

func (stubExtractor) Classify(path string) (ArchiveKind, bool) {
	if strings.HasSuffix(path, ".tar.gz") {
		return ArchiveTarGz, true
	}
	return 0, false
}

func (s *stubExtractor) Extract(src, dest string) error {
	s.extracted = append(s.extracted, src)
	if err := os.MkdirAll(filepath.Join(dest, "bin"), 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dest, "bin", "tool"), []byte("ok"), 0755)
}

// memPlatform keeps all durable state in memory.
type memPlatform struct {
	env          []config.EnvVar
	removedEnv   []string
	path         []string
	removedPath  []string
	registered   []string
	unregistered []string
}

func (p *memPlatform) PersistEnv(vars []config.EnvVar) error {
	p.env = append(p.env, vars...)
	return nil
}

func (p *memPlatform) RemoveEnv(names []string) error {
	p.removedEnv = append(p.removedEnv, names...)
	return nil
}

func (p *memPlatform) AddToPath(dir string) error {
	p.path = append(p.path, dir)
	return nil
}

func (p *memPlatform) RemoveFromPath(dir string) error {
	p.removedPath = append(p.removedPath, dir)
	return nil
}

func (p *memPlatform) RegisterInstalledProgram(exe string) error {
	p.registered = append(p.registered, exe)
	return nil
}

func (p *memPlatform) UnregisterInstalledProgram(exe string) error {
	p.unregistered = append(p.unregistered, exe)
	return nil
}

// recordSink collects progress positions and messages.
type recordSink struct {
	positions []int
	messages  []string
}

func (s *recordSink) Position(pos int) {
	s.positions = append(s.positions, pos)
}

func (s *recordSink) Message(msg string) {
	s.messages = append(s.messages, msg)
}

// newTestInstaller wires an installer over a temp root with all fakes.
func newTestInstaller(dir string, manifest *config.ToolsetManifest) (*Installer, *recordingExecutor, *stubFetcher, *stubExtractor, *memPlatform, error) {
	cfg, err := config.Init(dir, false)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	exec := &recordingExecutor{}
	fetch := &stubFetcher{}
	extract := &stubExtractor{}
	plat := &memPlatform{}
	ins := &Installer{
		Config:    cfg,
		Manifest:  manifest,
		Platform:  plat,
		Fetcher:   fetch,
		Extractor: extract,
		Executor:  exec,
	}
	return ins, exec, fetch, extract, plat, nil
}
