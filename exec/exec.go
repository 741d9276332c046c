package exec

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/liran-funaro/cgrep/regex"
	"github.com/liran-funaro/cgrep/writer"
)

var (
	ErrNoPattern   = errors.New("need at least a regular expression")
	ErrInputFailed = errors.New("some inputs could not be read")
)

type Params struct {
	Pattern              string
	InputFilenames       []string
	Jobs                 int
	CompileOnly          bool
	NfaDotOutputFilename string
	DfaDotOutputFilename string
	OutputFilename       string
	Package              string
	FuncName             string
	Verbose              bool
	LogLevel             string
	Stdin                io.Reader
	Stdout               io.Writer
	Stderr               io.Writer
}

func ParseParams(name string, args ...string) (*Params, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}

	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(os.Stderr)
	f.Usage = func() {
		_, _ = fmt.Fprintf(f.Output(), "usage: %s [flags] <regex> [file...]\n", name)
		f.PrintDefaults()
	}
	p := &Params{
		LogLevel: cfg.LogLevel,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
	f.IntVar(&p.Jobs, "j", cfg.Jobs, `number of files scanned concurrently`)
	f.BoolVar(&p.CompileOnly, "compile", false, `compile the regex and write the requested outputs, do not scan input`)
	f.StringVar(&p.NfaDotOutputFilename, "nfadot", "", `write the NFA graph in DOT format`)
	f.StringVar(&p.DfaDotOutputFilename, "dfadot", "", `write the DFA graph in DOT format`)
	f.StringVar(&p.OutputFilename, "o", "", `write a Go matcher function for the regex`)
	f.StringVar(&p.Package, "pkg", "main", `package name of the generated matcher`)
	f.StringVar(&p.FuncName, "func", "Match", `function name of the generated matcher`)
	f.BoolVar(&p.Verbose, "v", false, `debug logging`)

	if err := f.Parse(args); err != nil {
		return nil, err
	}
	if f.NArg() == 0 {
		return nil, ErrNoPattern
	}
	if p.Jobs < 1 {
		return nil, errors.Errorf("-j must be positive, got %d", p.Jobs)
	}
	p.Pattern = f.Arg(0)
	p.InputFilenames = f.Args()[1:]
	return p, nil
}

// Main runs the command and returns its exit status.
func Main(name string, args ...string) int {
	err := Execute(name, args...)
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, ErrInputFailed):
		// Each failed input was already reported.
		return 1
	}
	_, _ = fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
	return 1
}

func Execute(name string, args ...string) error {
	p, err := ParseParams(name, args...)
	if err != nil {
		return err
	}
	return ExecuteWithParams(p)
}

func ExecuteWithParams(p *Params) error {
	log := p.newLogger()

	re, err := regex.Compile(p.Pattern)
	if err != nil {
		return errors.Wrap(err, "compile")
	}
	defer re.Release(nil)
	log.WithFields(logrus.Fields{
		"pattern":      p.Pattern,
		"anchor-start": re.AnchorStart(),
		"anchor-end":   re.AnchorEnd(),
		"states":       re.NumStates(),
	}).Debug("compiled")

	if err = writeWithWriter(p.NfaDotOutputFilename, re.WriteNFADotGraph); err != nil {
		return err
	}
	if err = writeWithWriter(p.DfaDotOutputFilename, re.WriteDFADotGraph); err != nil {
		return err
	}
	if p.OutputFilename != "" {
		b := &writer.MatcherBuilder{Package: p.Package, Func: p.FuncName}
		code, err := b.Dump(re)
		if err != nil {
			return errors.Wrap(err, "dump matcher")
		}
		if err := os.WriteFile(p.OutputFilename, code, 0666); err != nil {
			return errors.Wrap(err, "write matcher")
		}
	}

	if p.CompileOnly {
		return nil
	}
	return p.scan(re, log)
}

func (p *Params) newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(p.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	level, err := logrus.ParseLevel(p.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	if p.Verbose {
		level = logrus.DebugLevel
	}
	// Unreadable inputs are reported at error level and must stay visible.
	if level < logrus.ErrorLevel {
		level = logrus.ErrorLevel
	}
	log.SetLevel(level)
	return log
}

func closeFile(f *os.File) {
	_ = f.Close()
}

func writeWithWriter(filepath string, writer func(io.Writer) error) error {
	if filepath == "" {
		return nil
	}
	f, err := os.Create(filepath)
	if err != nil {
		return errors.Wrap(err, "write graph")
	}
	defer closeFile(f)
	return writer(f)
}
