package executor

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keyrun-app/keyrun/internal/errors"
	"github.com/keyrun-app/keyrun/internal/types"
)

// Lookup is the executor's read-only view of the command registry.
type Lookup interface {
	Get(name string) (types.Command, bool)
}

// Executor resolves raw input to a launch spec and starts the process.
// Execute never mutates the registry, so concurrent calls only share
// read-locked lookups.
type Executor struct {
	reg      Lookup
	launcher ProcessLauncher
}

// NewExecutor builds an executor over the given registry view. A nil
// launcher selects the real exec-backed one.
func NewExecutor(reg Lookup, launcher ProcessLauncher) *Executor {
	if launcher == nil {
		launcher = NewExecLauncher()
	}
	return &Executor{reg: reg, launcher: launcher}
}

// Execute resolves input and starts the resulting process, returning once
// the process is running. Resolution:
//
//  1. Blank input is an argument error.
//  2. A "!"-prefixed token is refused with an unsupported-input error;
//     special commands belong to the host session.
//  3. A first token matching a registered command (case-insensitively)
//     launches the configured target, with the configured argument string's
//     tokens first and the user's extra tokens appended.
//  4. Otherwise a first token that is itself URL- or path-shaped launches
//     raw. A bare word with no registration is a not-found error: only
//     configured targets may name PATH executables.
//
// Start failures of every sort come back as one process-start error wrapping
// the cause; no raw OS error escapes.
func (e *Executor) Execute(ctx context.Context, input string) (*types.Launch, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, errors.NewArgument(errors.CodeEmptyInput, "input is blank").WithInput(input)
	}

	target, err := ParseTarget(trimmed)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(target, "!") {
		return nil, errors.NewUnsupported(trimmed)
	}
	args := ParseArguments(trimmed)

	var spec types.LaunchSpec
	if cmd, ok := e.reg.Get(target); ok {
		spec = types.LaunchSpec{
			Kind:   Classify(cmd.Target),
			Target: cmd.Target,
			Args:   append(splitTokens(cmd.Arguments), args...),
		}
	} else {
		kind := Classify(target)
		if kind == types.TargetExecutable {
			return nil, errors.NewNotFound(trimmed)
		}
		spec = types.LaunchSpec{Kind: kind, Target: target, Args: args}
	}

	handle, err := e.launcher.Start(ctx, spec)
	if err != nil {
		return nil, errors.NewProcessStart(trimmed, err)
	}

	return &types.Launch{
		ID:        uuid.NewString(),
		Input:     trimmed,
		Spec:      spec,
		PID:       handle.PID,
		StartedAt: time.Now(),
	}, nil
}
