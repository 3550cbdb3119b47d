package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/pkg/profile"

	novascript "github.com/Plexi09/NovaScript-programming-language"
)

const (
	appName     = "nvs"
	historyFile = ".novascript_history"
	promptMain  = "nvs> "
	promptCont  = "...> "
)

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
)

// cli is the top-level command surface. Exit codes: 0 on success, 1 for
// uncaught runtime errors, 2 for usage, read, lexical and parse errors.
type cli struct {
	Profile string `default:"" enum:",cpu,mem,trace" help:"Enable profiling" placeholder:"cpu|mem|trace"`

	Run     runCmd     `cmd:"" help:"Run a NovaScript program."`
	Check   checkCmd   `cmd:"" help:"Parse program(s) and report diagnostics without running."`
	Fmt     fmtCmd     `cmd:"" help:"Rewrite program(s) in canonical form."`
	Repl    replCmd    `cmd:"" help:"Start an interactive session."`
	Version versionCmd `cmd:"" help:"Print the interpreter version."`
}

// exitError carries a process exit code up to main without losing the message.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func fail(code int, err error) error {
	return &exitError{code: code, msg: err.Error()}
}

func main() {
	var c cli

	parser, err := kong.New(&c,
		kong.Name(appName),
		kong.Description("The NovaScript interpreter."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, Summary: true}),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ktx, err := parser.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(2)
	}

	if stop := startProfile(c.Profile); stop != nil {
		defer stop.Stop()
	}

	if err := ktx.Run(); err != nil {
		var xe *exitError
		if errors.As(err, &xe) {
			fmt.Fprintln(os.Stderr, errorStyle.Render(xe.msg))
			os.Exit(xe.code)
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func startProfile(mode string) interface{ Stop() } {
	switch mode {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."))
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath("."))
	case "trace":
		return profile.Start(profile.TraceProfile, profile.ProfilePath("."))
	}
	return nil
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

type runCmd struct {
	File string `arg:"" help:"Program file (.nvs)." type:"existingfile"`
}

func (r *runCmd) Run() error {
	src, err := os.ReadFile(r.File)
	if err != nil {
		return fail(2, fmt.Errorf("%s: cannot read %s: %v", appName, r.File, err))
	}

	prog, err := novascript.Parse(string(src))
	if err != nil {
		return fail(2, novascript.WrapErrorWithName(err, r.File, string(src)))
	}

	reg, err := novascript.NewProjectRegistry(r.File)
	if err != nil {
		return fail(2, fmt.Errorf("%s: %v", appName, err))
	}

	ip := novascript.NewInterpreter(reg, os.Stdout)
	if err := ip.Run(prog); err != nil {
		return fail(1, novascript.WrapErrorWithName(err, r.File, string(src)))
	}
	return nil
}

// -----------------------------------------------------------------------------
// check
// -----------------------------------------------------------------------------

type checkCmd struct {
	Files []string `arg:"" help:"Program file(s) to check." type:"existingfile"`
}

func (c *checkCmd) Run() error {
	bad := 0
	for _, f := range c.Files {
		src, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, f, err)
			bad++
			continue
		}
		if _, err := novascript.Parse(string(src)); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(
				novascript.WrapErrorWithName(err, f, string(src)).Error()))
			bad++
		}
	}
	if bad > 0 {
		return fail(2, fmt.Errorf("%s: %d file(s) failed to parse", appName, bad))
	}
	return nil
}

// -----------------------------------------------------------------------------
// fmt
// -----------------------------------------------------------------------------

type fmtCmd struct {
	Write bool     `help:"Rewrite files in place instead of printing." short:"w"`
	Check bool     `help:"Exit nonzero if any file is not canonically formatted."`
	Files []string `arg:"" help:"Program file(s) to format." type:"existingfile"`
}

func (f *fmtCmd) Run() error {
	changed := 0
	for _, file := range f.Files {
		src, err := os.ReadFile(file)
		if err != nil {
			return fail(2, fmt.Errorf("%s: cannot read %s: %v", appName, file, err))
		}

		prog, err := novascript.Parse(string(src))
		if err != nil {
			return fail(2, novascript.WrapErrorWithName(err, file, string(src)))
		}

		out := novascript.FormatProgram(prog)
		if out == string(src) {
			continue
		}
		changed++

		switch {
		case f.Check:
			fmt.Println(file)
		case f.Write:
			if err := os.WriteFile(file, []byte(out), 0o644); err != nil {
				return fail(2, fmt.Errorf("%s: cannot write %s: %v", appName, file, err))
			}
		default:
			fmt.Print(out)
		}
	}
	if f.Check && changed > 0 {
		return fail(1, fmt.Errorf("%s: %d file(s) not canonically formatted", appName, changed))
	}
	return nil
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

type replCmd struct{}

func (replCmd) Run() error {
	fmt.Println(bannerStyle.Render(fmt.Sprintf("NovaScript %s", novascript.Version)))
	fmt.Println("Ctrl+C cancels input, Ctrl+D exits. Type :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip := novascript.NewInterpreter(nil, os.Stdout)

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return nil
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if strings.ToLower(trimmed) == ":quit" {
				return nil
			}
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}

		stmts, err := novascript.ParseStatements(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(
				novascript.WrapErrorWithName(err, "repl", code).Error()))
			continue
		}

		v, err := ip.EvalStatements(stmts)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(
				novascript.WrapErrorWithName(err, "repl", code).Error()))
			continue
		}
		if v.Tag != novascript.VTNil {
			fmt.Println(resultStyle.Render(novascript.FormatValue(v)))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readByParseProbe accumulates lines until the input parses, or fails with an
// error that is not just premature end of input.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, perr := novascript.ParseStatements(src); perr != nil && novascript.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}

// -----------------------------------------------------------------------------
// version
// -----------------------------------------------------------------------------

type versionCmd struct{}

func (versionCmd) Run() error {
	fmt.Printf("NovaScript %s (built %s)\n", novascript.Version, novascript.BuildDate)
	return nil
}
