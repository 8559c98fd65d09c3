package schema

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON serializes the schema as a list of "name:type" declarations.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	for i, p := range s {
		if p.Type == nil {
			return nil, fmt.Errorf("parameter %d (%s): type is nil", i, p.Name)
		}
	}
	return json.Marshal(s.Strings())
}

// UnmarshalJSON deserializes the schema from a list of "name:type" declarations.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}

	if string(data) == "null" {
		*s = nil
		return nil
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := Parse(raw)
	if err != nil {
		return err
	}

	*s = parsed
	return nil
}
