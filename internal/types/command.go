// Package types provides common type definitions used throughout keyrun.
// This package contains shared types to avoid circular dependencies between packages.
package types

import (
	"strings"
	"time"
)

// Command is a registered launch target: a short name mapped to the URL,
// file path, or executable the launcher starts when the name is entered.
type Command struct {
	// Name is the identity key users type (e.g., "mail", "g"). Identity is
	// case-insensitive; the registry keeps the casing of the last registration.
	Name string `json:"name" yaml:"name"`
	// Target is what gets launched: a URL, an absolute or relative file path,
	// a bare executable name, or a special token such as "!reload".
	Target string `json:"target" yaml:"target"`
	// Description is optional human-readable help text.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Arguments is optional argument text appended when Target is an
	// executable or path. Stored as raw text and tokenized at launch time.
	Arguments string `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// Valid reports whether the command carries a usable identity.
func (c Command) Valid() bool {
	return strings.TrimSpace(c.Name) != ""
}

// TargetKind classifies a resolved launch target.
type TargetKind string

const (
	// TargetURL is a target with a recognized URL scheme, opened through the
	// operating system's default handler.
	TargetURL TargetKind = "url"
	// TargetPath is a filesystem-shaped target (absolute, volume-rooted, or
	// containing a path separator), opened through the OS default handler.
	TargetPath TargetKind = "path"
	// TargetExecutable is a bare program name resolved via the executable
	// search path.
	TargetExecutable TargetKind = "executable"
)

// LaunchSpec is the fully resolved instruction handed to a process launcher.
type LaunchSpec struct {
	// Kind selects the launch mechanism (shell-style open vs. direct spawn).
	Kind TargetKind `json:"kind"`
	// Target is the resolved URL, path, or executable name.
	Target string `json:"target"`
	// Args are the tokenized arguments passed after the target.
	Args []string `json:"args,omitempty"`
}

// Launch records a successfully started process.
type Launch struct {
	// ID is a unique identifier assigned to this launch attempt.
	ID string `json:"id"`
	// Input is the raw user input that produced the launch.
	Input string `json:"input"`
	// Spec is the resolved target the launcher received.
	Spec LaunchSpec `json:"spec"`
	// PID is the operating system process ID, or 0 when the launch mechanism
	// does not expose one.
	PID int `json:"pid"`
	// StartedAt records when the process start returned.
	StartedAt time.Time `json:"started_at"`
}

// EventType identifies a host event published to subscribers.
type EventType string

const (
	// EventActivate signals the UI layer to show the input surface.
	EventActivate EventType = "activate"
	// EventReloaded reports a successful configuration reload.
	EventReloaded EventType = "reloaded"
	// EventReloadFailed reports a reload that kept the previous configuration.
	EventReloadFailed EventType = "reload_failed"
	// EventLaunched reports a process start.
	EventLaunched EventType = "launched"
	// EventLaunchFailed reports an input that did not start a process.
	EventLaunchFailed EventType = "launch_failed"
	// EventExitRequested reports that a shutdown was requested via !exit.
	EventExitRequested EventType = "exit_requested"
)

// Event is a host notification delivered to UI clients and logs.
type Event struct {
	// ID is a unique identifier for ordering and deduplication.
	ID string `json:"id"`
	// Type is the event kind.
	Type EventType `json:"type"`
	// Input is the user input that triggered the event, when applicable.
	Input string `json:"input,omitempty"`
	// Detail carries a human-readable summary (error text, counts).
	Detail string `json:"detail,omitempty"`
	// Timestamp records when the event occurred.
	Timestamp time.Time `json:"timestamp"`
}
