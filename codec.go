package formz

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Codec defines the deserialization contract for form values.
// Implement this interface to feed forms from other formats.
type Codec interface {
	// Unmarshal deserializes bytes into a value.
	Unmarshal(data []byte, v any) error

	// ContentType returns the MIME type for observability and debugging.
	ContentType() string
}

// JSONCodec implements Codec using goccy/go-json.
type JSONCodec struct{}

// Unmarshal deserializes JSON bytes into v.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ContentType returns the JSON MIME type.
func (JSONCodec) ContentType() string {
	return "application/json"
}

// Ensure JSONCodec implements Codec.
var _ Codec = JSONCodec{}

// YAMLCodec implements Codec using gopkg.in/yaml.v3.
type YAMLCodec struct{}

// Unmarshal deserializes YAML bytes into v.
func (YAMLCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// ContentType returns the YAML MIME type.
func (YAMLCodec) ContentType() string {
	return "application/x-yaml"
}

// Ensure YAMLCodec implements Codec.
var _ Codec = YAMLCodec{}

// MsgpackCodec implements Codec using vmihailenco/msgpack.
type MsgpackCodec struct{}

// Unmarshal deserializes msgpack bytes into v. Numbers in untyped positions
// decode as int64, uint64 or float64.
func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	return dec.Decode(v)
}

// ContentType returns the msgpack MIME type.
func (MsgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Ensure MsgpackCodec implements Codec.
var _ Codec = MsgpackCodec{}

// AutoCodec decodes JSON when the data starts with '{' or '[' and YAML
// otherwise.
type AutoCodec struct{}

// Unmarshal detects the format from content and deserializes into v.
func (AutoCodec) Unmarshal(data []byte, v any) error {
	if looksLikeJSON(data) {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}

// ContentType returns a generic MIME type.
func (AutoCodec) ContentType() string {
	return "application/octet-stream"
}

// Ensure AutoCodec implements Codec.
var _ Codec = AutoCodec{}

// errEmptyDocument is returned when data decodes to no value at all.
var errEmptyDocument = errors.New("empty document")

// DecodeValue decodes data into a form value.
func DecodeValue(codec Codec, data []byte) (Value, error) {
	var raw map[string]any
	if err := codec.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", codec.ContentType(), err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decode %s: %w", codec.ContentType(), errEmptyDocument)
	}
	return normalize(raw).(map[string]any), nil
}

// CodecFor returns the codec for a file extension (".json", ".yaml", ".yml",
// ".msgpack", ".mp"). Unknown extensions get AutoCodec.
func CodecFor(ext string) Codec {
	switch ext {
	case ".json":
		return JSONCodec{}
	case ".yaml", ".yml":
		return YAMLCodec{}
	case ".msgpack", ".mp":
		return MsgpackCodec{}
	default:
		return AutoCodec{}
	}
}
