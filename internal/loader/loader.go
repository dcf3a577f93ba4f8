// Package loader turns a commands document into validated command entries.
// Three carriers are supported, chosen by file extension: YAML (the default),
// TOML, and JSON. The document shape is the same in all three:
//
//	commands:
//	  - name: gg
//	    target: https://google.com
//	    description: web search
//	    arguments: --new-window
//
// The legacy key `linkto` is accepted as an alias of `target`. Unknown keys
// are ignored. Duplicate names are not rejected here; registry replacement
// semantics govern them.
package loader

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/keyrun-app/keyrun/internal/errors"
	"github.com/keyrun-app/keyrun/internal/types"
)

// Format identifies the on-disk carrier of a commands document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// DetectFormat maps a file extension to its Format. Anything unrecognized
// falls back to YAML.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// document is the wire shape shared by all three carriers.
type document struct {
	Commands []entry `yaml:"commands" toml:"commands" json:"commands"`
}

type entry struct {
	Name        string `yaml:"name" toml:"name" json:"name"`
	Target      string `yaml:"target" toml:"target" json:"target"`
	LinkTo      string `yaml:"linkto" toml:"linkto" json:"linkto"`
	Description string `yaml:"description" toml:"description" json:"description"`
	Arguments   string `yaml:"arguments" toml:"arguments" json:"arguments"`
}

// Load reads the commands document at path and parses it with the format its
// extension indicates. An unreadable file is reported as a config-parse
// error so callers keep their previous table active.
func Load(path string) ([]types.Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigParse(
			fmt.Sprintf("cannot read commands document %s", path), "", err)
	}
	return Parse(data, DetectFormat(path))
}

// Parse decodes data in the given format and validates every entry. A
// whitespace-only document is valid and yields no entries.
func Parse(data []byte, format Format) ([]types.Command, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []types.Command{}, nil
	}

	var doc document
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, errors.NewConfigParse("malformed commands document", tomlPosition(err), err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.NewConfigParse("malformed commands document", jsonPosition(data, err), err)
		}
	default:
		// yaml.v3 embeds "line N" in its own messages, so no separate
		// position is attached.
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.NewConfigParse("malformed commands document", "", err)
		}
	}

	cmds := make([]types.Command, 0, len(doc.Commands))
	for i, e := range doc.Commands {
		name := strings.TrimSpace(e.Name)
		target := strings.TrimSpace(e.Target)
		if target == "" {
			target = strings.TrimSpace(e.LinkTo)
		}

		if name == "" {
			return nil, errors.NewConfigValidation(
				fmt.Sprintf("entry %d: name is required", i+1))
		}
		if target == "" {
			return nil, errors.NewConfigValidation(
				fmt.Sprintf("entry %d (%s): target is required", i+1, name))
		}

		cmds = append(cmds, types.Command{
			Name:        name,
			Target:      target,
			Description: e.Description,
			Arguments:   e.Arguments,
		})
	}
	return cmds, nil
}

// tomlPosition extracts a "line N" indicator from a TOML parse error.
func tomlPosition(err error) string {
	var perr toml.ParseError
	if stderrors.As(err, &perr) && perr.Position.Line > 0 {
		return fmt.Sprintf("line %d", perr.Position.Line)
	}
	return ""
}

// jsonPosition converts a JSON error's byte offset into a "line N" indicator.
func jsonPosition(data []byte, err error) string {
	var offset int64
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syn):
		offset = syn.Offset
	case stderrors.As(err, &typ):
		offset = typ.Offset
	default:
		return ""
	}
	if offset < 1 || offset > int64(len(data)) {
		return ""
	}
	line := 1 + bytes.Count(data[:offset], []byte{'\n'})
	return fmt.Sprintf("line %d", line)
}
