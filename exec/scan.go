package exec

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/markbates/safe"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/liran-funaro/cgrep/regex"
)

// writeError marks a failure to write output. It stops the scan, unlike a
// failure to read one input.
type writeError struct {
	err error
}

func (e *writeError) Error() string {
	return "write output: " + e.err.Error()
}

func (e *writeError) Unwrap() error {
	return e.err
}

func isWriteError(err error) bool {
	var werr *writeError
	return errors.As(err, &werr)
}

type source struct {
	name string
	open func() (io.ReadCloser, error)
}

func (p *Params) sources() []source {
	if len(p.InputFilenames) == 0 {
		return []source{{
			name: "(standard input)",
			open: func() (io.ReadCloser, error) { return io.NopCloser(p.Stdin), nil },
		}}
	}
	srcs := make([]source, len(p.InputFilenames))
	for i, name := range p.InputFilenames {
		srcs[i] = source{
			name: name,
			open: func() (io.ReadCloser, error) { return os.Open(name) },
		}
	}
	return srcs
}

// scan prints the matching lines of every source, in order. A source that
// can't be read is reported and skipped. Failing to write output ends the scan.
func (p *Params) scan(re *regex.Regex, log *logrus.Logger) error {
	srcs := p.sources()
	out := bufio.NewWriter(p.Stdout)
	var errs []error

	if p.Jobs <= 1 || len(srcs) == 1 {
		errs = make([]error, len(srcs))
		for i, src := range srcs {
			errs[i] = grepSource(re, src, out)
			if isWriteError(errs[i]) {
				return errs[i]
			}
			p.report(log, src, errs[i])
		}
	} else {
		var err error
		if errs, err = p.scanConcurrently(re, srcs, out, log); err != nil {
			return err
		}
	}

	if err := out.Flush(); err != nil {
		return &writeError{err: err}
	}
	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		return errors.Wrapf(ErrInputFailed, "%d of %d", failed, len(srcs))
	}
	return nil
}

// scanConcurrently buffers each source's matches and writes the buffers in
// source order once all workers are done.
func (p *Params) scanConcurrently(re *regex.Regex, srcs []source, out io.Writer, log *logrus.Logger) ([]error, error) {
	results := make([]bytes.Buffer, len(srcs))
	errs := make([]error, len(srcs))

	var g errgroup.Group
	g.SetLimit(p.Jobs)
	for i, src := range srcs {
		g.Go(func() error {
			errs[i] = grepSource(re, src, &results[i])
			return nil
		})
	}
	_ = g.Wait()

	for i, src := range srcs {
		if _, err := results[i].WriteTo(out); err != nil {
			return nil, &writeError{err: err}
		}
		p.report(log, src, errs[i])
	}
	return errs, nil
}

func (p *Params) report(log *logrus.Logger, src source, err error) {
	entry := log.WithField("file", src.name)
	if err != nil {
		entry.WithError(err).Error("can't read input")
		return
	}
	entry.Debug("done")
}

// grepSource writes the lines of src that re matches to out. A panic while
// matching is returned as an error.
func grepSource(re *regex.Regex, src source, out io.Writer) error {
	in, err := src.open()
	if err != nil {
		return errors.Wrapf(err, "can't open %q", src.name)
	}
	defer func() { _ = in.Close() }()

	return safe.Run(func() error {
		err := grepLines(re, in, out)
		if isWriteError(err) {
			return err
		}
		return errors.Wrapf(err, "read %q", src.name)
	})
}

// grepLines prints each line (newline stripped) that re matches, followed by
// a newline.
func grepLines(re *regex.Regex, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			text := bytes.TrimSuffix(line, []byte{'\n'})
			if re.Match(text) {
				if _, werr := out.Write(append(text, '\n')); werr != nil {
					return &writeError{err: werr}
				}
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
