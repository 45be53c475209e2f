package ui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
)

// Boolean form fields offer exactly these choices.
var boolChoices = []string{"true", "false"}

// FormField is one input of a function's parameter form.
type FormField struct {
	Name        string
	Type        string
	Kind        contract.ParamKind
	Placeholder string
	Choices     []string // non-nil for two-valued boolean inputs
}

// Label is the field's display name; unnamed inputs get their position.
func (f FormField) Label(i int) string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("arg%d", i)
}

// FormFields builds the parameter form for fd.
func FormFields(fd contract.FunctionDescriptor) []FormField {
	fields := make([]FormField, len(fd.Inputs))
	for i, in := range fd.Inputs {
		typ := in.CanonicalType()
		pk := contract.ParseParamKind(in.Type)
		f := FormField{
			Name:        in.Name,
			Type:        typ,
			Kind:        pk,
			Placeholder: placeholder(pk, typ),
		}
		if pk.Kind == contract.KindBoolean {
			f.Choices = boolChoices
		}
		fields[i] = f
	}
	return fields
}

func placeholder(pk contract.ParamKind, typ string) string {
	switch pk.Kind {
	case contract.KindAddress:
		return "0x… (42 chars)"
	case contract.KindInteger:
		if strings.HasPrefix(pk.Type, "uint") {
			return "non-negative integer, e.g. 1000000000000000000"
		}
		return "integer, e.g. -42"
	case contract.KindBytesLike:
		return "0x-prefixed hex"
	case contract.KindArray:
		elem := "value"
		if pk.Elem != nil {
			elem = pk.Elem.Type
		}
		return fmt.Sprintf("comma-separated %s values, e.g. a, b, c", elem)
	case contract.KindBoolean:
		return "true / false"
	}
	if strings.HasPrefix(typ, "(") {
		return `JSON list of fields, e.g. ["0x…", 1]`
	}
	return "text"
}

// CollectParams converts raw form text back into call parameters. Array
// text is split into a list; booleans become bool; tuple JSON is decoded.
// Everything else is passed through as a string for the encoder.
func CollectParams(fields []FormField, values []string) ([]any, error) {
	if len(values) != len(fields) {
		return nil, fmt.Errorf("%w: expected %d values, got %d", contract.ErrInvalidParam, len(fields), len(values))
	}
	params := make([]any, len(fields))
	for i, f := range fields {
		v := strings.TrimSpace(values[i])
		switch {
		case f.Kind.Kind == contract.KindArray:
			params[i] = contract.SplitList(v)
		case f.Kind.Kind == contract.KindBoolean:
			params[i] = strings.EqualFold(v, "true")
		case strings.HasPrefix(f.Type, "(") && (strings.HasPrefix(v, "[") || strings.HasPrefix(v, "{")):
			var decoded any
			if err := json.Unmarshal([]byte(v), &decoded); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", contract.ErrInvalidParam, f.Label(i), err)
			}
			params[i] = decoded
		default:
			params[i] = v
		}
	}
	return params, nil
}
