package novascript

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// --- built-in modules -------------------------------------------------------

func TestStrlib(t *testing.T) {
	wantStr(t, evalSrc(t, "use strlib\nstrlib.upper(\"hola\")"), "HOLA")
	wantStr(t, evalSrc(t, "use strlib\nstrlib.lower(\"HOLA\")"), "hola")
	wantNum(t, evalSrc(t, "use strlib\nstrlib.length(\"héllo\")"), 5)
	wantStr(t, evalSrc(t, "use strlib\nstrlib.substr(\"héllo\", 1, 3)"), "él")
	wantStr(t, evalSrc(t, "use strlib\nstrlib.substr(\"abc\", 2, 99)"), "c")
	wantStr(t, evalSrc(t, "use strlib\nstrlib.strip(\"  x  \")"), "x")
	wantBool(t, evalSrc(t, "use strlib\nstrlib.contains(\"haystack\", \"sta\")"), true)
	wantStr(t, evalSrc(t, "use strlib\nstrlib.replace(\"a-b-c\", \"-\", \"+\")"), "a+b+c")
	wantStr(t, evalSrc(t, "use strlib\nstrlib.join([\"a\", \"b\"], \"-\")"), "a-b")

	v := evalSrc(t, "use strlib\nstrlib.split(\"a,b,c\", \",\")")
	if v.Tag != VTList {
		t.Fatalf("split must return a list, got %#v", v)
	}
	if elems := v.Data.(*ListObject).Elems; len(elems) != 3 || elems[1].Data.(string) != "b" {
		t.Fatalf("bad split result: %#v", elems)
	}
}

func TestMathlib(t *testing.T) {
	wantNum(t, evalSrc(t, "use mathlib\nmathlib.abs(0 - 3)"), 3)
	wantNum(t, evalSrc(t, "use mathlib\nmathlib.pow(2, 10)"), 1024)
	wantNum(t, evalSrc(t, "use mathlib\nmathlib.sqrt(16)"), 4)
	wantNum(t, evalSrc(t, "use mathlib\nmathlib.floor(2.7)"), 2)
	wantNum(t, evalSrc(t, "use mathlib\nmathlib.ceil(2.1)"), 3)
	wantNum(t, evalSrc(t, "use mathlib\nmathlib.round(2.5)"), 3)
	wantNum(t, evalSrc(t, "use mathlib\nmathlib.min(4, 7)"), 4)
	wantNum(t, evalSrc(t, "use mathlib\nmathlib.max(4, 7)"), 7)
	wantBool(t, evalSrc(t, "use mathlib\nmathlib.pi() > 3.14 and mathlib.pi() < 3.15"), true)
}

func TestNativeBadArguments(t *testing.T) {
	rte := evalErr(t, "use mathlib\nmathlib.pow(2)")
	wantKind(t, rte, ErrModule)
	if !strings.Contains(rte.Msg, "mathlib.pow expects 2 argument(s)") {
		t.Fatalf("unexpected message %q", rte.Msg)
	}
	if rte.Line == 0 {
		t.Fatal("native failure must carry the call-site position")
	}

	wantKind(t, evalErr(t, "use strlib\nstrlib.upper(1)"), ErrModule)
	wantKind(t, evalErr(t, "use mathlib\nmathlib.sqrt(0 - 1)"), ErrModule)
}

func TestNativeErrorIsCatchable(t *testing.T) {
	out := runProgram(t, `
use mathlib
try
    display mathlib.sqrt(0 - 1)
except e
    display "caught: " + e
end
`)
	if !strings.HasPrefix(out, "caught: ") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestUnknownModule(t *testing.T) {
	rte := evalErr(t, "use nosuch")
	wantKind(t, rte, ErrModule)
	if !strings.Contains(rte.Msg, "unknown module 'nosuch'") {
		t.Fatalf("unexpected message %q", rte.Msg)
	}
}

func TestUnknownModuleMemberSuggestion(t *testing.T) {
	rte := evalErr(t, "use strlib\nstrlib.upp(\"x\")")
	wantKind(t, rte, ErrModule)
	if !strings.Contains(rte.Msg, "did you mean 'upper'?") {
		t.Fatalf("expected suggestion, got %q", rte.Msg)
	}
}

func TestUseBindsGlobally(t *testing.T) {
	// `use` inside a function still lands in the global scope.
	wantStr(t, evalSrc(t, `
func setup()
    use strlib
end
setup()
strlib.upper("ab")
`), "AB")
}

// --- project libraries ------------------------------------------------------

func writeLib(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
}

func projectRegistry(t *testing.T, root string) *Registry {
	t.Helper()
	reg, err := NewProjectRegistry(filepath.Join(root, "main.nvs"))
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestProjectLibraryDefaultDir(t *testing.T) {
	root := t.TempDir()
	writeLib(t, filepath.Join(root, "lib"), "geo.nvs", `
func area(w: num, h: num) return num
    return w * h
end
`)

	var buf bytes.Buffer
	ip := NewInterpreter(projectRegistry(t, root), &buf)
	err := ip.RunSource("main.nvs", "PROGRAM BEGIN\nuse geo\ndisplay geo.area(3, 4)\nPROGRAM END\n")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if buf.String() != "12\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestProjectManifestLibDir(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "nova.yaml"),
		[]byte("name: demo\nlibdir: vendor\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeLib(t, filepath.Join(root, "vendor"), "greet.nvs", `
func hello(who: str) return str
    return "hi " + who
end
`)

	reg := projectRegistry(t, root)
	mod, err := reg.Resolve("greet")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := mod.Get("hello"); !ok {
		t.Fatalf("library member missing: %v", mod.Order)
	}
}

func TestInvalidManifest(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "nova.yaml"),
		[]byte("libdir: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewProjectRegistry(filepath.Join(root, "main.nvs")); err == nil {
		t.Fatal("expected manifest error")
	}
}

func TestLibraryExportsOnlyCallables(t *testing.T) {
	root := t.TempDir()
	writeLib(t, filepath.Join(root, "lib"), "mix.nvs", `
num hidden = 42
func visible()
    return hidden
end
class Thing
end
`)

	mod, err := projectRegistry(t, root).Resolve("mix")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := mod.Get("hidden"); ok {
		t.Fatal("plain variables must not be exported")
	}
	if len(mod.Order) != 2 || mod.Order[0] != "Thing" || mod.Order[1] != "visible" {
		t.Fatalf("unexpected member order: %v", mod.Order)
	}
}

func TestLibraryCache(t *testing.T) {
	root := t.TempDir()
	writeLib(t, filepath.Join(root, "lib"), "one.nvs", "func f()\n    return 1\nend\n")

	reg := projectRegistry(t, root)
	a, err := reg.Resolve("one")
	if err != nil {
		t.Fatal(err)
	}
	b, err := reg.Resolve("one")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("second resolve must hit the cache")
	}
}

func TestLibraryUsesLibrary(t *testing.T) {
	root := t.TempDir()
	libDir := filepath.Join(root, "lib")
	writeLib(t, libDir, "inner.nvs", "func one()\n    return 1\nend\n")
	writeLib(t, libDir, "outer.nvs", `
use inner
func two()
    return inner.one() + 1
end
`)

	ip := NewInterpreter(projectRegistry(t, root), io.Discard)
	v, err := ip.EvalStatements(mustParseStmts(t, "use outer\nouter.two()"))
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	wantNum(t, v, 2)
}

func TestImportCycleDetected(t *testing.T) {
	root := t.TempDir()
	libDir := filepath.Join(root, "lib")
	writeLib(t, libDir, "a.nvs", "use b\n")
	writeLib(t, libDir, "b.nvs", "use a\n")

	_, err := projectRegistry(t, root).Resolve("a")
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !strings.Contains(err.Error(), "import cycle detected: a -> b -> a") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestLibraryParseErrorReported(t *testing.T) {
	root := t.TempDir()
	writeLib(t, filepath.Join(root, "lib"), "bad.nvs", "func (\n")

	_, err := projectRegistry(t, root).Resolve("bad")
	if err == nil || !strings.Contains(err.Error(), "parse error in library 'bad'") {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestRegistryNames(t *testing.T) {
	root := t.TempDir()
	writeLib(t, filepath.Join(root, "lib"), "zeta.nvs", "func f()\nend\n")

	names := projectRegistry(t, root).Names()
	want := []string{"mathlib", "strlib", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("want %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("want %v, got %v", want, names)
		}
	}
}
