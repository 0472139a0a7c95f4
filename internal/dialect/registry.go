package dialect

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/mod/semver"
)

// Registry maps (name, version) to registered dialects. Lookups are safe for
// concurrent use. The first lookup freezes the registry.
type Registry struct {
	mu       sync.RWMutex
	dialects map[string][]*Dialect // per name, highest version first
	frozen   bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{dialects: make(map[string][]*Dialect)}
}

// Default is the process-wide registry the built-in dialects register with.
var Default = NewRegistry()

// Register adds d to the Default registry.
func Register(d Descriptor) error {
	return Default.Register(d)
}

// MustRegister is Register that panics on error, for init functions.
func MustRegister(d Descriptor) {
	if err := Default.Register(d); err != nil {
		panic(err)
	}
}

// Lookup finds a dialect in the Default registry.
func Lookup(name, version string) (*Dialect, error) {
	return Default.Lookup(name, version)
}

func canonical(version string) string {
	return "v" + strings.TrimPrefix(strings.TrimSpace(version), "v")
}

// Register validates d, parses its templates and adds it. Registering a
// (name, version) pair twice, or registering after the first lookup, fails.
func (r *Registry) Register(d Descriptor) error {
	if strings.TrimSpace(d.Name) == "" {
		return &RegistryError{Name: d.Name, Version: d.Version, Reason: "empty dialect name"}
	}
	if !semver.IsValid(canonical(d.Version)) {
		return &RegistryError{Name: d.Name, Version: d.Version, Reason: "version is not a semantic version"}
	}
	dl, err := newDialect(d)
	if err != nil {
		return &RegistryError{Name: d.Name, Version: d.Version, Reason: "invalid descriptor", Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return &RegistryError{Name: d.Name, Version: d.Version, Reason: "registry is frozen after first lookup"}
	}
	for _, existing := range r.dialects[d.Name] {
		if semver.Compare(canonical(existing.Version()), canonical(d.Version)) == 0 {
			return &RegistryError{Name: d.Name, Version: d.Version, Reason: "already registered"}
		}
	}
	list := append(r.dialects[d.Name], dl)
	sort.SliceStable(list, func(i, j int) bool {
		return semver.Compare(canonical(list[i].Version()), canonical(list[j].Version())) > 0
	})
	r.dialects[d.Name] = list

	slog.Debug("dialect registered", "dialect", d.Name, "version", d.Version, "templates", len(d.Templates))
	return nil
}

// Lookup returns the dialect registered under name whose version matches.
// An empty version selects the highest registered version. Otherwise a
// registered version matches when one of the two versions is a dot-aligned
// prefix of the other ("5" matches "5.11", "3.6" matches "3"); the highest
// match wins. There is no fallback to another dialect.
func (r *Registry) Lookup(name, version string) (*Dialect, error) {
	r.freeze()

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.dialects[name] {
		if version == "" || versionMatch(d.Version(), version) {
			return d, nil
		}
	}
	return nil, &UnknownDialectError{Name: name, Version: version}
}

// Dialects returns every registered dialect ordered by name, then by
// descending version.
func (r *Registry) Dialects() []*Dialect {
	r.freeze()

	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.dialects))
	for name := range r.dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []*Dialect
	for _, name := range names {
		out = append(out, r.dialects[name]...)
	}
	return out
}

// Derive registers a copy of the dialect (base, baseVersion) under (name,
// version) with templates overlaid on the base templates. It does not freeze
// the registry.
func (r *Registry) Derive(base, baseVersion, name, version string, templates map[string]string) error {
	r.mu.RLock()
	var src *Dialect
	for _, d := range r.dialects[base] {
		if baseVersion == "" || versionMatch(d.Version(), baseVersion) {
			src = d
			break
		}
	}
	r.mu.RUnlock()
	if src == nil {
		return &RegistryError{Name: name, Version: version, Reason: "derive", Err: &UnknownDialectError{Name: base, Version: baseVersion}}
	}

	d := src.Descriptor()
	d.Name, d.Version = name, version
	for k, v := range templates {
		d.Templates[k] = v
	}
	return r.Register(d)
}

func (r *Registry) freeze() {
	r.mu.RLock()
	frozen := r.frozen
	r.mu.RUnlock()
	if frozen {
		return
	}
	r.mu.Lock()
	if !r.frozen {
		r.frozen = true
		slog.Debug("dialect registry frozen")
	}
	r.mu.Unlock()
}

func versionMatch(registered, requested string) bool {
	a := strings.TrimPrefix(strings.TrimSpace(registered), "v")
	b := strings.TrimPrefix(strings.TrimSpace(requested), "v")
	return dotPrefix(a, b) || dotPrefix(b, a)
}

// dotPrefix reports whether p is s or a prefix of s ending at a dot.
func dotPrefix(p, s string) bool {
	if !strings.HasPrefix(s, p) {
		return false
	}
	return len(s) == len(p) || s[len(p)] == '.'
}
