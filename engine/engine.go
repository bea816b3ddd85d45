// Package engine wires the translation pipeline together: translate,
// validate, gate, run. It is the contract consumed by any transport layer;
// the transport hands in a source string and gets back structured results.
//
// DSL-level and target-level problems are data, not control flow: a failed
// translation still returns the partial code, the validator and gate report
// typed errors, and a program that exits non-zero or times out is a normal
// RunResult. Plain errors are reserved for host-level failures.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/akan-lang/twi/config"
	"github.com/akan-lang/twi/sandbox"
	"github.com/akan-lang/twi/translator"
	"github.com/akan-lang/twi/validator"
)

// Engine owns one configured pipeline. It holds no per-request state and
// is safe for concurrent use; every Execute call spawns its own child
// process.
type Engine struct {
	cfg    *config.Config
	tr     *translator.Translator
	gate   *sandbox.Gate
	runner *sandbox.Runner
	log    *slog.Logger
}

// New builds an Engine from an explicit configuration. A nil cfg uses the
// defaults; a nil logger discards.
func New(cfg *config.Config, logger *slog.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		cfg:  cfg,
		tr:   translator.New(),
		gate: sandbox.NewGate(cfg.Deny...),
		runner: &sandbox.Runner{
			Interpreter: cfg.Interpreter,
			OutputCap:   cfg.OutputCap,
			Timeout:     cfg.Timeout(),
			Logger:      logger,
		},
		log: logger,
	}
}

// Translate converts Twi source to Python and validates the result. The
// returned Result is always non-nil: on a validation failure it carries
// the partial translation alongside the *validator.SyntaxError, which
// callers need for diagnostics.
func (e *Engine) Translate(source string) (*translator.Result, error) {
	res := e.tr.Translate(source)
	if err := validator.Validate(res.Code); err != nil {
		return res, err
	}
	return res, nil
}

// Check runs translation, validation, and the gate without executing
// anything. Useful for linting source ahead of submission.
func (e *Engine) Check(source string) error {
	res, err := e.Translate(source)
	if err != nil {
		return err
	}
	return e.gate.Check(res.Code)
}

// ExecRequest describes one execution. When Pretranslated is set, Source
// is taken as Python text and translation is skipped. A zero Timeout uses
// the configured default.
type ExecRequest struct {
	Source        string
	Pretranslated bool
	Timeout       time.Duration
}

// ExecResponse pairs the translation (nil for pretranslated input) with
// the run outcome. Run is nil when validation or the gate stopped the
// pipeline before execution.
type ExecResponse struct {
	Translation *translator.Result
	Run         *sandbox.RunResult
}

// Execute runs the full pipeline on req. The response is always non-nil.
// Pipeline rejections come back as *validator.SyntaxError or
// *sandbox.ForbiddenError alongside the partial response; denylisted code
// never spawns a process.
func (e *Engine) Execute(ctx context.Context, req ExecRequest) (*ExecResponse, error) {
	resp := &ExecResponse{}
	code := req.Source
	if !req.Pretranslated {
		resp.Translation = e.tr.Translate(req.Source)
		code = resp.Translation.Code
	}

	if err := validator.Validate(code); err != nil {
		return resp, err
	}
	if err := e.gate.Check(code); err != nil {
		return resp, err
	}

	run, err := e.runner.Run(ctx, code, req.Timeout)
	if err != nil {
		return resp, fmt.Errorf("executing program: %w", err)
	}
	resp.Run = run
	e.log.Debug("execution finished",
		"run", run.ID,
		"exit_code", run.ExitCode,
		"timed_out", run.TimedOut,
		"duration", run.Duration,
	)
	return resp, nil
}
