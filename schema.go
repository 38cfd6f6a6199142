package reactor

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// propertyDef holds the definition of a single property.
type propertyDef struct {
	Type        string
	Description string
	Enum        []any
	Items       *propertyDef
	Properties  map[string]any
	Required    []string
}

// SchemaFor generates a JSON schema object from a struct type T.
//
// Field names come from json tags; fields tagged `json:"-"` and unexported
// fields are skipped. The following tags are honoured:
//
//	desc:"text"      - property description shown to the model
//	required:"true"  - mark the property as required
//	enum:"a,b,c"     - allowed values (comma-separated)
//
// Example:
//
//	type SearchArgs struct {
//	    Query string `json:"query" desc:"Search query" required:"true"`
//	    Limit int    `json:"limit" desc:"Max results"`
//	}
//
//	schema, err := reactor.SchemaFor[SearchArgs]()
func SchemaFor[T any]() (json.RawMessage, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct", t)
	}

	props, required := structProperties(t)
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return json.Marshal(schema)
}

// MustSchemaFor is like SchemaFor but panics on error.
func MustSchemaFor[T any]() json.RawMessage {
	schema, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return schema
}

func structProperties(t reflect.Type) (map[string]any, []string) {
	props := make(map[string]any)
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := strings.Split(jsonTag, ",")[0]
		if name == "" {
			name = field.Name
		}

		prop := typeToPropertyDef(field.Type)
		prop.Description = field.Tag.Get("desc")
		if enum := field.Tag.Get("enum"); enum != "" {
			for _, v := range strings.Split(enum, ",") {
				prop.Enum = append(prop.Enum, strings.TrimSpace(v))
			}
		}
		if field.Tag.Get("required") == "true" {
			required = append(required, name)
		}
		props[name] = prop.toMap()
	}

	return props, required
}

func typeToPropertyDef(t reflect.Type) *propertyDef {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &propertyDef{Type: "string"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &propertyDef{Type: "integer"}

	case reflect.Float32, reflect.Float64:
		return &propertyDef{Type: "number"}

	case reflect.Bool:
		return &propertyDef{Type: "boolean"}

	case reflect.Slice, reflect.Array:
		return &propertyDef{Type: "array", Items: typeToPropertyDef(t.Elem())}

	case reflect.Struct:
		props, required := structProperties(t)
		return &propertyDef{Type: "object", Properties: props, Required: required}

	case reflect.Map:
		return &propertyDef{Type: "object"}

	case reflect.Interface:
		// Any JSON value
		return &propertyDef{}

	default:
		return &propertyDef{Type: "string"}
	}
}

func (p *propertyDef) toMap() map[string]any {
	result := map[string]any{}
	if p.Type != "" {
		result["type"] = p.Type
	}
	if p.Description != "" {
		result["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		result["enum"] = p.Enum
	}
	if p.Items != nil {
		result["items"] = p.Items.toMap()
	}
	if p.Properties != nil {
		result["properties"] = p.Properties
	}
	if len(p.Required) > 0 {
		result["required"] = p.Required
	}
	return result
}
