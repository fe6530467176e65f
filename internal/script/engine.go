// Package script runs working plane commands written as zygomys Lisp.
//
//	(activate)
//	(select "Box" "Vertex1" "Vertex2" "Vertex3")
//	(click)
//	(status)
//
// Every command runs against a session through its Guard, so scripts can
// be evaluated while other producers drive the same session.
package script

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/session"
)

// EvalTimeout is the hard limit for a single evaluation
const EvalTimeout = 5 * time.Second

// EvalError is a non-fatal error in a script, such as a parse error or a
// command that failed
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates scripts against one session and document
type Engine struct {
	mu     sync.Mutex
	guard  *session.Guard
	doc    *document.Document
	out    io.Writer
	logger *slog.Logger
}

// NewEngine creates an engine. Output of (status) and (plane) goes to out.
func NewEngine(guard *session.Guard, doc *document.Document, out io.Writer, logger *slog.Logger) *Engine {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		guard:  guard,
		doc:    doc,
		out:    out,
		logger: logger.With(slog.String("component", "script")),
	}
}

type evalResult struct {
	errors []EvalError
	err    error
}

// Evaluate runs source in a fresh sandbox. Script errors are returned as
// EvalErrors; the error result is reserved for panics and timeouts.
func (e *Engine) Evaluate(source string) ([]EvalError, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		ch <- evalResult{errors: e.evaluate(source)}
	}()

	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()
	select {
	case res := <-ch:
		return res.errors, res.err
	case <-timer.C:
		return nil, fmt.Errorf("evaluation timed out after %s", EvalTimeout)
	}
}

func (e *Engine) evaluate(source string) []EvalError {
	if strings.TrimSpace(source) == "" {
		return nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	e.register(env)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		errs := parseZygomysError(err)
		e.logger.Debug("script failed", slog.String("error", errs[0].Error()))
		return errs
	}
	return nil
}

// EvaluateFile reads and evaluates a script file
func (e *Engine) EvaluateFile(r io.Reader) ([]EvalError, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return e.Evaluate(string(data))
}

var (
	linePattern      = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)
)

func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
