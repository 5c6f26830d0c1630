package macro

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// jsonProxy stands in for the enclosing receiver while a json-reader is
// open. Writes pass through; json-field reads values from it.
type jsonProxy struct {
	Receiver
	data any
}

// Field looks up key. A key starting with "/" is a JSON pointer; any other
// key is a dotted path such as "author.name" or "items.0".
func (p *jsonProxy) Field(key string) (string, bool) {
	var parts []string
	if strings.HasPrefix(key, "/") {
		for _, tok := range strings.Split(key[1:], "/") {
			tok = strings.ReplaceAll(tok, "~1", "/")
			parts = append(parts, strings.ReplaceAll(tok, "~0", "~"))
		}
	} else {
		parts = strings.Split(key, ".")
	}

	v := p.data
	for _, part := range parts {
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return "", false
			}
			v = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return "", false
			}
			v = node[i]
		default:
			return "", false
		}
	}
	return formatJSON(v), true
}

func formatJSON(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return "null"
	}
	out, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(out)
}

// jsonReader loads a JSON file and exposes it to nested json-field macros.
// Its own text becomes paragraphs as at the document level.
type jsonReader struct {
	in    *Interpreter
	proxy *jsonProxy
	b     paragraphBuilder
}

func newJSONReader(in *Interpreter, args []string) (Handler, error) {
	if err := requireArgs(args, 1, "json-reader PATH"); err != nil {
		return nil, err
	}
	data, err := in.ReadFile(args[0])
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errorf(ErrResource, "%s: invalid JSON: %v", args[0], err)
	}

	proxy := &jsonProxy{Receiver: in.Receiver(), data: v}
	in.PushReceiver(proxy)
	return &jsonReader{in: in, proxy: proxy, b: paragraphBuilder{style: StyleNormal, batch: true}}, nil
}

func (h *jsonReader) Name() string { return NameJSONReader }

func (h *jsonReader) Consume(line Line) error {
	h.b.add(line.Text)
	return nil
}

func (h *jsonReader) Flush() error { return h.b.flush(h.proxy) }

func (h *jsonReader) Finalize() error {
	if err := h.Flush(); err != nil {
		return err
	}
	return h.in.PopReceiver(h.proxy)
}

// jsonField appends a value from the enclosing json-reader as a run.
type jsonField struct {
	bare
	proxy *jsonProxy
	value string
	style string
}

func newJSONField(in *Interpreter, args []string) (Handler, error) {
	if err := requireArgs(args, 1, "json-field KEY [STYLE]"); err != nil {
		return nil, err
	}
	proxy, ok := in.Receiver().(*jsonProxy)
	if !ok {
		return nil, errorf(ErrContext, "%s must be used inside %s", NameJSONField, NameJSONReader)
	}
	value, ok := proxy.Field(args[0])
	if !ok {
		return nil, errorf(ErrUsage, "field %q not found", args[0])
	}
	h := &jsonField{bare: bare{NameJSONField}, proxy: proxy, value: value}
	if len(args) > 1 {
		h.style = args[1]
	}
	return h, nil
}

func (h *jsonField) Finalize() error {
	if len(h.proxy.Paragraphs()) == 0 {
		return errorf(ErrState, "no paragraph to attach the field to")
	}
	_, err := h.proxy.AddRun(h.value, h.style)
	return err
}
