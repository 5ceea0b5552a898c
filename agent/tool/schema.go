package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
)

type compiledTool struct {
	raw    []byte
	schema *jsonschema.Schema
}

var (
	compileOnce sync.Once
	compiled    map[Kind]compiledTool
	compileErr  error
)

func reflector() *invopop.Reflector {
	return &invopop.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		Anonymous:                 true,
		ExpandedStruct:            true,
	}
}

func compileAll() (map[Kind]compiledTool, error) {
	compileOnce.Do(func() {
		out := make(map[Kind]compiledTool, len(All))
		c := jsonschema.NewCompiler()
		for _, k := range All {
			raw, err := json.Marshal(reflector().Reflect(argsFor(k)))
			if err != nil {
				compileErr = fmt.Errorf("reflect %s schema: %w", k, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
			if err != nil {
				compileErr = fmt.Errorf("decode %s schema: %w", k, err)
				return
			}
			url := k.String() + ".json"
			if err := c.AddResource(url, doc); err != nil {
				compileErr = fmt.Errorf("add %s schema: %w", k, err)
				return
			}
			sch, err := c.Compile(url)
			if err != nil {
				compileErr = fmt.Errorf("compile %s schema: %w", k, err)
				return
			}
			out[k] = compiledTool{raw: raw, schema: sch}
		}
		compiled = out
	})
	return compiled, compileErr
}

// Schema returns the JSON schema document for k's arguments.
func Schema(k Kind) (json.RawMessage, error) {
	all, err := compileAll()
	if err != nil {
		return nil, err
	}
	ct, ok := all[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownTool, k)
	}
	return ct.raw, nil
}

// Decode validates raw arguments against k's schema and decodes them into
// k's argument struct. raw may be an object, a JSON string holding an
// object, or empty. Keys are accepted in snake_case or camelCase.
func Decode(k Kind, raw json.RawMessage) (any, error) {
	all, err := compileAll()
	if err != nil {
		return nil, err
	}
	ct, ok := all[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownTool, k)
	}

	obj, err := argumentObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrInvalidArguments, err)
	}
	normalized := normalizeKeys(obj)

	if err := ct.schema.Validate(normalized); err != nil {
		return nil, fmt.Errorf("%w: %s", contractx.ErrInvalidArguments, validationMessage(err))
	}

	encoded, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrInvalidArguments, err)
	}
	target := argsFor(k)
	if err := json.Unmarshal(encoded, target); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrInvalidArguments, err)
	}
	return target, nil
}

func argumentObject(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}
	// the voice transport sends arguments as a JSON-encoded string
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("arguments string: %w", err)
		}
		trimmed = bytes.TrimSpace([]byte(inner))
		if len(trimmed) == 0 {
			return map[string]any{}, nil
		}
	}

	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(trimmed))
	if err != nil {
		return nil, fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("arguments must be a JSON object")
	}
	return obj, nil
}

// normalizeKeys converts top-level camelCase keys to snake_case, integral
// numbers such as 5.0 to integers and drops empty strings. Snake_case keys
// win over camelCase duplicates.
func normalizeKeys(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		switch tv := v.(type) {
		case json.Number:
			v = integral(tv)
		case string:
			if strings.TrimSpace(tv) == "" {
				continue
			}
		}
		snake := toSnake(k)
		if _, exists := out[snake]; exists && snake != k {
			continue
		}
		out[snake] = v
	}
	return out
}

func integral(n json.Number) json.Number {
	if _, err := n.Int64(); err == nil {
		return n
	}
	f, err := n.Float64()
	if err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return json.Number(strconv.FormatInt(int64(f), 10))
	}
	return n
}

func toSnake(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// validationMessage drops the schema location header so the message only
// names the offending fields.
func validationMessage(err error) string {
	var parts []string
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "jsonschema validation failed") {
			continue
		}
		parts = append(parts, strings.TrimPrefix(line, "- "))
	}
	if len(parts) == 0 {
		return err.Error()
	}
	return strings.Join(parts, "; ")
}
