package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/graphq/internal/dialect"
)

// descriptorSchema constrains overlay files. Each entry under dialect derives
// a new dialect from a registered base by replacing some of its templates.
const descriptorSchema = `
dialect: [string]: {
	base:          string & !=""
	base_version?: string
	version:       string & !=""
	templates: [=~"^[a-z0-9_]+$"]: string
}
`

// DescriptorSpec is one decoded overlay.
type DescriptorSpec struct {
	Name        string
	Base        string
	BaseVersion string
	Version     string
	Templates   map[string]string
	Pos         token.Pos
}

// LoadError is an overlay error with its CUE source position when known.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadDescriptors loads every CUE file of the package in dir and decodes its
// overlays, ordered by name.
//
//	dialect: "cypher-strict": {
//		base:    "cypher"
//		version: "1.0.0"
//		templates: page: " SKIP {skip} LIMIT {limit} // strict"
//	}
func LoadDescriptors(dir string) ([]DescriptorSpec, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{Field: "descriptors", Message: fmt.Sprintf("descriptor directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Field: "descriptors", Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Field: "descriptors", Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, cueError("descriptors", inst.Err)
	}
	v := ctx.BuildInstance(inst)
	specs, err := CompileDescriptors(v)
	if err != nil {
		return nil, err
	}
	slog.Debug("dialect descriptors loaded", "dir", dir, "count", len(specs))
	return specs, nil
}

// CompileDescriptors decodes the overlays of a built CUE value.
func CompileDescriptors(v cue.Value) ([]DescriptorSpec, error) {
	if err := v.Err(); err != nil {
		return nil, cueError("descriptors", err)
	}
	schema := v.Context().CompileString(descriptorSchema)
	if err := schema.Err(); err != nil {
		return nil, cueError("schema", err)
	}
	v = schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError("dialect", err)
	}

	root := v.LookupPath(cue.ParsePath("dialect"))
	if !root.Exists() {
		return nil, nil
	}
	iter, err := root.Fields()
	if err != nil {
		return nil, cueError("dialect", err)
	}

	var specs []DescriptorSpec
	for iter.Next() {
		spec, err := compileDescriptor(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs, nil
}

func compileDescriptor(name string, v cue.Value) (DescriptorSpec, error) {
	spec := DescriptorSpec{Name: name, Pos: v.Pos(), Templates: map[string]string{}}
	field := "dialect." + name

	var err error
	if spec.Base, err = v.LookupPath(cue.ParsePath("base")).String(); err != nil {
		return spec, cueError(field+".base", err)
	}
	if spec.Version, err = v.LookupPath(cue.ParsePath("version")).String(); err != nil {
		return spec, cueError(field+".version", err)
	}
	if bv := v.LookupPath(cue.ParsePath("base_version")); bv.Exists() {
		if spec.BaseVersion, err = bv.String(); err != nil {
			return spec, cueError(field+".base_version", err)
		}
	}
	if spec.Base == name {
		return spec, &LoadError{Field: field + ".base", Message: "a dialect cannot derive from itself", Pos: v.Pos()}
	}

	tpl := v.LookupPath(cue.ParsePath("templates"))
	if !tpl.Exists() {
		return spec, nil
	}
	ti, err := tpl.Fields()
	if err != nil {
		return spec, cueError(field+".templates", err)
	}
	for ti.Next() {
		text, err := ti.Value().String()
		if err != nil {
			return spec, cueError(field+".templates."+ti.Label(), err)
		}
		spec.Templates[ti.Label()] = text
	}
	return spec, nil
}

// Apply registers every overlay in reg. Overlays are applied in order, so an
// overlay may derive from one applied before it.
func Apply(reg *dialect.Registry, specs []DescriptorSpec) error {
	for _, s := range specs {
		if err := reg.Derive(s.Base, s.BaseVersion, s.Name, s.Version, s.Templates); err != nil {
			return fmt.Errorf("dialect %s: %w", s.Name, err)
		}
		slog.Info("dialect derived", "name", s.Name, "version", s.Version, "base", s.Base)
	}
	return nil
}

// cueError converts a CUE error to a LoadError carrying its first position.
func cueError(field string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Field: field, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Field: field, Message: first.Error()}
	if pos := errors.Positions(first); len(pos) > 0 {
		le.Pos = pos[0]
	}
	return le
}
