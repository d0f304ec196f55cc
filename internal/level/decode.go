package level

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a level file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatFor picks a format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported level file extension %q", filepath.Ext(path))
	}
}

// Load reads a level file, choosing the decoder by extension.
func Load(path string) (*Level, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	lvl, err := Decode(format, data, path)
	if err != nil {
		return nil, withPath(err, path)
	}
	return lvl, nil
}

// Decode parses level bytes in the given format. name is used in error
// positions.
func Decode(format Format, data []byte, name string) (*Level, error) {
	var (
		f   File
		err error
	)
	switch format {
	case FormatTOML:
		f, err = decodeTOML(data)
	case FormatYAML:
		f, err = decodeYAML(data)
	case FormatCUE:
		f, err = decodeCUE(data, name)
	default:
		return nil, fmt.Errorf("unsupported level format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return FromFile(f)
}

func decodeTOML(data []byte) (File, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		le := &Error{Field: "toml", Message: err.Error()}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			le.Line, le.Column = de.Position()
		}
		var sm *toml.StrictMissingError
		if errors.As(err, &sm) {
			le.Message = "unknown field: " + strings.TrimSpace(sm.String())
		}
		return File{}, le
	}
	return f, nil
}

func decodeYAML(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, &Error{Field: "yaml", Message: err.Error()}
	}
	return f, nil
}

// EncodeTOML renders a level in the native format.
func EncodeTOML(l *Level) ([]byte, error) {
	data, err := toml.Marshal(l.File())
	if err != nil {
		return nil, fmt.Errorf("encode level: %w", err)
	}
	return data, nil
}

// EncodeYAML renders a level as YAML.
func EncodeYAML(l *Level) ([]byte, error) {
	data, err := yaml.Marshal(l.File())
	if err != nil {
		return nil, fmt.Errorf("encode level: %w", err)
	}
	return data, nil
}
