// modules.go — NovaScript module registry.
//
// OVERVIEW
// --------
// `use NAME` asks the registry to resolve NAME into a *Module: a namespace
// value whose member access (`NAME.func`) dispatches to a callable. The
// registry is an explicit object constructed by the invoker and handed to
// the Interpreter — there is no process-wide module state.
//
// Resolution order:
//  1. Built-in modules (strlib, mathlib), registered at construction.
//  2. The project's library directory: NAME resolves to <libdir>/NAME.nvs,
//     a bare list of declarations (no PROGRAM envelope). The file is
//     parsed and evaluated in an isolated environment and its top-level
//     function and class bindings are snapshotted into the module, sorted
//     lexicographically for a deterministic member listing.
//  3. Failure: a ModuleError naming the module, with a fuzzy "did you
//     mean" candidate when one exists.
//
// The library directory is taken from the optional project manifest
// `nova.yaml` next to the script (key `libdir`), defaulting to `lib`.
//
// Caching & cycles: successful library loads are cached by the cleaned
// absolute file path; failures are never cached. A library may itself `use`
// other libraries; the in-progress load stack detects cycles and reports
// the full chain (`a -> b -> a`).
//
// Concurrency: the cache and load stack are not synchronized; the language
// is single-threaded and so is its loader.
package novascript

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// Manifest is the optional per-project nova.yaml.
type Manifest struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	LibDir      string `yaml:"libdir"`
}

// Registry resolves module names for `use`.
type Registry struct {
	builtins map[string]*Module
	libDir   string // "" disables project libraries
	cache    map[string]*Module
	loading  []string // in-progress loads, for cycle detection
}

// NewRegistry returns a registry with only the built-in modules.
func NewRegistry() *Registry {
	r := &Registry{
		builtins: make(map[string]*Module),
		cache:    make(map[string]*Module),
	}
	r.Register(strlibModule())
	r.Register(mathlibModule())
	return r
}

// NewProjectRegistry returns a registry that additionally resolves
// libraries for the project containing scriptPath. A nova.yaml manifest
// next to the script may set the library directory; the default is "lib".
func NewProjectRegistry(scriptPath string) (*Registry, error) {
	r := NewRegistry()
	root := filepath.Dir(scriptPath)
	libDir := "lib"

	data, err := os.ReadFile(filepath.Join(root, "nova.yaml"))
	if err == nil {
		var m Manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("invalid nova.yaml: %w", err)
		}
		if m.LibDir != "" {
			libDir = m.LibDir
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	r.libDir = filepath.Join(root, libDir)
	return r, nil
}

// Register installs a built-in module, replacing any previous one of the
// same name.
func (r *Registry) Register(m *Module) { r.builtins[m.Name] = m }

// Names lists every resolvable module name: built-ins plus the .nvs
// libraries currently present in the project library directory.
func (r *Registry) Names() []string {
	var out []string
	for name := range r.builtins {
		out = append(out, name)
	}
	if r.libDir != "" {
		entries, err := os.ReadDir(r.libDir)
		if err == nil {
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), ".nvs") {
					out = append(out, strings.TrimSuffix(e.Name(), ".nvs"))
				}
			}
		}
	}
	sort.Strings(out)
	return out
}

// Resolve maps a module name to its namespace. Failures are ModuleError-kind
// *RuntimeError values; the evaluator attaches the `use` position.
func (r *Registry) Resolve(name string) (*Module, error) {
	if m, ok := r.builtins[name]; ok {
		return m, nil
	}
	if r.libDir != "" {
		path := filepath.Join(r.libDir, name+".nvs")
		if _, err := os.Stat(path); err == nil {
			return r.loadLibrary(name, path)
		}
	}
	return nil, &RuntimeError{Kind: ErrModule,
		Msg: fmt.Sprintf("unknown module '%s'%s", name, suggest(name, r.Names()))}
}

func (r *Registry) loadLibrary(name, path string) (*Module, error) {
	canon, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		canon = filepath.Clean(path)
	}
	if m, ok := r.cache[canon]; ok {
		return m, nil
	}
	for _, p := range r.loading {
		if p == canon {
			return nil, &RuntimeError{Kind: ErrModule,
				Msg: "import cycle detected: " + r.cycleChain(canon)}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &RuntimeError{Kind: ErrModule,
			Msg: fmt.Sprintf("cannot read library '%s': %v", name, err)}
	}
	src := string(data)

	stmts, perr := ParseStatements(src)
	if perr != nil {
		return nil, &RuntimeError{Kind: ErrModule,
			Msg: fmt.Sprintf("parse error in library '%s': %v", name, WrapErrorWithName(perr, path, src))}
	}

	// Evaluate declarations in an isolated interpreter that shares this
	// registry, so libraries may `use` other libraries.
	r.loading = append(r.loading, canon)
	defer func() { r.loading = r.loading[:len(r.loading)-1] }()

	lib := NewInterpreter(r, os.Stdout)
	if _, err := lib.execBlock(stmts, lib.Globals); err != nil {
		return nil, &RuntimeError{Kind: ErrModule,
			Msg: fmt.Sprintf("runtime error in library '%s': %v", name, err)}
	}

	// Snapshot the callable surface: functions and classes, sorted.
	mod := &Module{Name: name, Members: make(map[string]Value)}
	for k, v := range lib.Globals.table {
		if v.Tag == VTFun || v.Tag == VTClass {
			mod.Members[k] = v
			mod.Order = append(mod.Order, k)
		}
	}
	sort.Strings(mod.Order)

	r.cache[canon] = mod
	return mod, nil
}

func (r *Registry) cycleChain(repeat string) string {
	parts := make([]string, 0, len(r.loading)+1)
	for _, p := range r.loading {
		parts = append(parts, strings.TrimSuffix(filepath.Base(p), ".nvs"))
	}
	parts = append(parts, strings.TrimSuffix(filepath.Base(repeat), ".nvs"))
	return strings.Join(parts, " -> ")
}

// ----- native helpers shared by the built-in modules -----

// nativeModule assembles a Module from named native functions with a
// deterministic member order.
func nativeModule(name string, fns map[string]NativeFn) *Module {
	m := &Module{Name: name, Members: make(map[string]Value, len(fns))}
	for fname, fn := range fns {
		m.Members[fname] = FunVal(&Fun{Name: name + "." + fname, Native: fn})
		m.Order = append(m.Order, fname)
	}
	sort.Strings(m.Order)
	return m
}

// wantArgs validates native argument count and tags per the module call
// contract; VTNil in want means "any tag".
func wantArgs(fname string, args []Value, want ...ValueTag) error {
	if len(args) != len(want) {
		return &RuntimeError{Kind: ErrModule,
			Msg: fmt.Sprintf("%s expects %d argument(s), got %d", fname, len(want), len(args))}
	}
	for i, w := range want {
		if w != VTNil && args[i].Tag != w {
			return &RuntimeError{Kind: ErrModule,
				Msg: fmt.Sprintf("%s argument %d must be %s, got %s",
					fname, i+1, w.TypeName(), args[i].Tag.TypeName())}
		}
	}
	return nil
}
