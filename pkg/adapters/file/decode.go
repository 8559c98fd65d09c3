package file

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/aretw0/arbor/internal/dto"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Decode reads one domain document. YAML and JSON are both accepted.
func Decode(r io.Reader) (*dto.DomainFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(data)
}

// DecodeBytes is like Decode for an in-memory document.
func DecodeBytes(data []byte) (*dto.DomainFile, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		if err == io.EOF {
			return &dto.DomainFile{}, nil
		}
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	var out dto.DomainFile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       subtaskHook,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &out, nil
}

var subtaskType = reflect.TypeOf(dto.SubtaskSpec{})

// subtaskHook lets a subtask be written as a bare task name.
func subtaskHook(from, to reflect.Type, data any) (any, error) {
	if to != subtaskType || from.Kind() != reflect.String {
		return data, nil
	}
	return map[string]any{"task": data}, nil
}
