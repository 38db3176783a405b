package gocalc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/repr"
)

const (
	Banner = "Simple calculator. Type 'q' to quit."
	Prompt = "Operation > "
)

var quitWords = map[string]bool{
	"q":    true,
	"quit": true,
	"exit": true,
}

// DefaultMaxLineLength bounds an input line when REPLOptions leaves
// MaxLineLength unset.
const DefaultMaxLineLength = 1 << 20

// REPLOptions controls the interactive loop.
type REPLOptions struct {
	// Color paints the Result and Error labels with ANSI escapes.
	Color bool
	// Logger receives diagnostics. Nothing is logged when nil.
	Logger *slog.Logger
	// Eval is passed to the evaluator.
	Eval *EvalOptions
	// MaxLineLength is the longest line, in bytes, that gets evaluated.
	// Longer lines are skipped and reported with ErrLineTooLong.
	MaxLineLength int
}

func (o *REPLOptions) normalize() REPLOptions {
	var out REPLOptions
	if o != nil {
		out = *o
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if out.MaxLineLength <= 0 {
		out.MaxLineLength = DefaultMaxLineLength
	}
	return out
}

// REPL reads one expression per line and prints its value or the reason it
// was rejected. Lines are independent of each other.
type REPL struct {
	reader    *bufio.Reader
	out       io.Writer
	evaluator *Evaluator
	logger    *slog.Logger
	color     bool
	maxLine   int
}

func NewREPL(in io.Reader, out io.Writer, opts *REPLOptions) *REPL {
	o := opts.normalize()
	return &REPL{
		reader:    bufio.NewReader(in),
		out:       out,
		evaluator: NewEvaluator(o.Eval),
		logger:    o.Logger,
		color:     o.Color,
		maxLine:   o.MaxLineLength,
	}
}

// Run loops until a quit word or the end of input. Only read errors are
// returned; evaluation failures and overlong lines are printed and the loop
// goes on.
func (r *REPL) Run() error {
	fmt.Fprintln(r.out, Banner)
	for {
		fmt.Fprint(r.out, Prompt)
		line, err := r.readLine()
		if errors.Is(err, ErrLineTooLong) {
			r.logger.Info("line too long", slog.String("error", err.Error()))
			fmt.Fprintln(r.out, paint("Error:", ansiRed, r.color), err)
			continue
		}
		if err != nil {
			fmt.Fprintln(r.out)
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if quitWords[strings.ToLower(line)] {
			r.logger.Debug("quit requested", slog.String("input", line))
			return nil
		}
		if line == "" {
			continue
		}
		ret, err := r.evalLine(line)
		if err != nil {
			fmt.Fprintln(r.out, paint("Error:", ansiRed, r.color), err)
			continue
		}
		fmt.Fprintln(r.out, paint("Result:", ansiGreen, r.color), ret)
	}
}

// readLine returns the next line without its terminator. A line over the
// limit is still consumed to its end, so the next call starts on a fresh
// line.
func (r *REPL) readLine() (string, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, more, err := r.reader.ReadLine()
		if err != nil {
			if err == io.EOF && (len(buf) > 0 || tooLong) {
				break
			}
			return "", err
		}
		if !tooLong {
			buf = append(buf, chunk...)
			if len(buf) > r.maxLine {
				tooLong = true
				buf = nil
			}
		}
		if !more {
			break
		}
	}
	if tooLong {
		return "", newError(ErrLineTooLong, 0, fmt.Sprintf("limit is %d bytes", r.maxLine))
	}
	return string(buf), nil
}

func (r *REPL) evalLine(line string) (Number, error) {
	tree, node, err := parse(line)
	if tree != nil && r.logger.Enabled(context.Background(), slog.LevelDebug) {
		r.logger.Debug("parsed expression", slog.String("input", line), slog.String("tree", repr.String(tree, repr.OmitEmpty(true))))
	}
	if err != nil {
		r.logFailure(line, err)
		return Number{}, err
	}
	ret, err := r.evaluator.EvalNode(node)
	if err != nil {
		r.logFailure(line, err)
		return Number{}, err
	}
	r.logger.Debug("evaluated expression", slog.String("input", line), slog.String("result", ret.String()))
	return ret, nil
}

// logFailure logs malformed and rejected input at info level. Arithmetic
// failures are ordinary results and stay at debug.
func (r *REPL) logFailure(line string, err error) {
	attrs := []any{slog.String("input", line), slog.String("error", err.Error())}
	switch {
	case errors.Is(err, ErrSyntax):
		r.logger.Info("syntax error", attrs...)
	case isRejection(err):
		r.logger.Info("expression rejected", attrs...)
	default:
		r.logger.Debug("evaluation failed", attrs...)
	}
}

var rejections = []error{
	ErrUnsupportedConstant,
	ErrUnsupportedOperator,
	ErrUnsupportedUnaryOperator,
	ErrUnsupportedExpression,
	ErrTooDeep,
}

func isRejection(err error) bool {
	for _, kind := range rejections {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
