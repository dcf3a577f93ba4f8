// Package app wires the engine components into one session: a registry and
// completion index fed from the commands document, an executor for normal
// input, special-command handling, an event feed for UI surfaces, and
// optional launch-history recording.
//
// Every reload path in the host funnels through Session.Reload, and nothing
// here is fatal: a bad document keeps the previous table, a failed launch is
// published and logged while the session keeps serving.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keyrun-app/keyrun/internal/completion"
	"github.com/keyrun-app/keyrun/internal/errors"
	"github.com/keyrun-app/keyrun/internal/executor"
	"github.com/keyrun-app/keyrun/internal/history"
	"github.com/keyrun-app/keyrun/internal/input"
	"github.com/keyrun-app/keyrun/internal/loader"
	"github.com/keyrun-app/keyrun/internal/logging"
	"github.com/keyrun-app/keyrun/internal/registry"
	"github.com/keyrun-app/keyrun/internal/types"
	"github.com/keyrun-app/keyrun/internal/version"
)

// Options configures a Session.
type Options struct {
	// CommandsFile is the commands document path, re-read on every reload.
	CommandsFile string
	// Launcher overrides the real process launcher; nil selects it.
	Launcher executor.ProcessLauncher
	// History receives successful launches when non-nil.
	History *history.Store
	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// Result is the outcome of dispatching one input line.
type Result struct {
	Kind input.Kind
	// Launch is set for normal input that started a process.
	Launch *types.Launch
	// Version is set when the line asked for build information.
	Version string
}

// Session owns the engine and the host-side behavior around it.
type Session struct {
	commandsFile string
	completer    *completion.Completer
	registry     *registry.Registry
	executor     *executor.Executor
	store        *history.Store
	log          logging.Logger

	mu          sync.RWMutex
	subscribers map[chan types.Event]struct{}

	exitOnce sync.Once
	exit     chan struct{}
}

// NewSession builds a session around an empty registry; call Load or Reload
// to populate it.
func NewSession(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}

	completer := completion.NewCompleter()
	reg := registry.New(completer)

	return &Session{
		commandsFile: opts.CommandsFile,
		completer:    completer,
		registry:     reg,
		executor:     executor.NewExecutor(reg, opts.Launcher),
		store:        opts.History,
		log:          log.WithComponent("session"),
		subscribers:  make(map[chan types.Event]struct{}),
		exit:         make(chan struct{}),
	}
}

// Load reads the commands document and installs it, without publishing
// reload events. Callers decide whether a failed initial load is fatal; the
// session works with an empty table either way.
func (s *Session) Load(ctx context.Context) error {
	cmds, err := loader.Load(s.commandsFile)
	if err != nil {
		return err
	}
	if err := s.registry.ReplaceAll(cmds); err != nil {
		return err
	}
	s.log.Info(ctx, "commands loaded", "file", s.commandsFile, "count", len(cmds))
	return nil
}

// Reload re-reads the commands document. The document parses fully before
// the table is touched, so any failure leaves the previous commands active;
// the outcome is published either way.
func (s *Session) Reload(ctx context.Context) error {
	cmds, err := loader.Load(s.commandsFile)
	if err != nil {
		s.log.Warn(ctx, err, "reload failed, keeping previous commands", "file", s.commandsFile)
		s.publish(types.EventReloadFailed, "", err.Error())
		return err
	}
	if err := s.registry.ReplaceAll(cmds); err != nil {
		s.log.Warn(ctx, err, "reload failed, keeping previous commands", "file", s.commandsFile)
		s.publish(types.EventReloadFailed, "", err.Error())
		return err
	}

	s.log.Info(ctx, "commands reloaded", "file", s.commandsFile, "count", len(cmds))
	s.publish(types.EventReloaded, "", s.commandsFile)
	return nil
}

// Dispatch routes one raw input line: specials are handled here, everything
// else goes to the executor. Successful launches are recorded in history
// and published; failures are published and returned.
func (s *Session) Dispatch(ctx context.Context, raw string) (*Result, error) {
	line := input.Classify(raw)

	switch line.Kind {
	case input.Reload:
		return &Result{Kind: line.Kind}, s.Reload(ctx)

	case input.Exit:
		s.log.Info(ctx, "exit requested")
		s.publish(types.EventExitRequested, line.Text, "")
		s.exitOnce.Do(func() { close(s.exit) })
		return &Result{Kind: line.Kind}, nil

	case input.Version:
		return &Result{Kind: line.Kind, Version: version.GetShortVersion()}, nil

	case input.UnknownSpecial:
		err := errors.NewUnsupported(line.Token)
		s.log.Warn(ctx, err, "unknown special command")
		return nil, err

	default:
		launch, err := s.executor.Execute(ctx, line.Text)
		if err != nil {
			s.log.Warn(ctx, err, "launch failed", "input", line.Text)
			s.publish(types.EventLaunchFailed, line.Text, err.Error())
			return nil, err
		}

		s.log.Info(ctx, "launched", "input", launch.Input, "target", launch.Spec.Target, "pid", launch.PID)
		s.publish(types.EventLaunched, launch.Input, launch.Spec.Target)
		s.record(ctx, launch)
		return &Result{Kind: line.Kind, Launch: launch}, nil
	}
}

// Activate publishes the activation edge event for UI subscribers.
func (s *Session) Activate(ctx context.Context) {
	s.log.Debug(ctx, "activation signal")
	s.publish(types.EventActivate, "", "")
}

// Suggest returns completion candidates for a prefix.
func (s *Session) Suggest(prefix string) []string {
	return s.completer.Candidates(prefix)
}

// Complete extends a prefix to its longest unambiguous continuation.
func (s *Session) Complete(prefix string) string {
	return s.completer.Complete(prefix)
}

// Commands returns the registered commands, name-sorted.
func (s *Session) Commands() []types.Command {
	return s.registry.All()
}

// CommandCount returns the number of registered commands.
func (s *Session) CommandCount() int {
	return s.registry.Len()
}

// ExitRequested is closed once an exit special has been dispatched.
func (s *Session) ExitRequested() <-chan struct{} {
	return s.exit
}

// Subscribe registers an event feed. The returned cancel function must be
// called when done; events overflowing the subscriber's buffer are dropped
// rather than blocking the session.
func (s *Session) Subscribe() (<-chan types.Event, func()) {
	ch := make(chan types.Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) publish(eventType types.EventType, in, detail string) {
	event := types.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Input:     in,
		Detail:    detail,
		Timestamp: time.Now(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (s *Session) record(ctx context.Context, launch *types.Launch) {
	if s.store == nil {
		return
	}
	if err := s.store.Record(ctx, launch); err != nil {
		s.log.Warn(ctx, err, "recording launch history")
	}
}
