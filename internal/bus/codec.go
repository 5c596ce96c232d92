package bus

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	jsoncodec "github.com/drblury/protoflow/internal/runtime/jsoncodec"
)

// Message headers carried on the wire.
const (
	HeaderContentType         = "contentType"
	HeaderOriginalContentType = "originalContentType"
	HeaderPartition           = "partition"
)

// Well-known mime types used by the serialization grammar.
const (
	MimeApplicationOctetStream = "application/octet-stream"
	MimeTextPlain              = "text/plain"
	javaObjectMimePrefix       = "application/x-java-object;type="
)

// TargetContentType is an accepted serialization target.
type TargetContentType string

const (
	// TargetAll leaves the message untouched.
	TargetAll TargetContentType = "*/*"
	// TargetApplicationOctetStream forces the payload to bytes with a
	// synthetic content-type header.
	TargetApplicationOctetStream TargetContentType = MimeApplicationOctetStream
)

// Envelope is the pre-wire representation of a message: an arbitrary Go
// payload plus string headers. SerializeIfNecessary turns an Envelope with
// a non-byte payload into one ready to carry over the wire;
// DeserializeIfNecessary is its inverse.
type Envelope struct {
	Payload  any
	Metadata message.Metadata
}

func cloneMetadata(m message.Metadata) message.Metadata {
	out := make(message.Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// TypeCodec encodes/decodes arbitrary payloads by a class/type name. The
// default implementation (DefaultCodec) uses sonic-backed JSON for generic
// types and protojson for proto.Message payloads, reusing the same split the
// host runtime's JSON/Proto handlers already make.
type TypeCodec interface {
	// Encode serializes v, returning the bytes and the class name under
	// which the payload should be tagged for later Decode.
	Encode(v any) (data []byte, className string, err error)
	// Decode reconstructs a value of className from data.
	Decode(data []byte, className string) (any, error)
}

// DefaultCodec is the TypeCodec every BusCore uses unless overridden. Decode
// requires the target type to have been registered first via RegisterType;
// there is no Go analog of Class.forName, so unregistered class names
// surface as SerializationError naming the attempted class. Encode tags a
// pointer payload with its element type's name (*bus.widget is tagged
// "bus.widget"), so a factory returning a pointer registers under that name.
type DefaultCodec struct {
	mu    sync.RWMutex
	types map[string]func() any
}

// NewDefaultCodec constructs an empty DefaultCodec.
func NewDefaultCodec() *DefaultCodec {
	return &DefaultCodec{types: map[string]func() any{}}
}

// RegisterType registers a zero-value factory under name, so payloads tagged
// with that class name can be decoded. For proto.Message payloads, register
// a factory returning a fresh instance; Encode/Decode detect proto.Message
// and route through protojson automatically.
func (c *DefaultCodec) RegisterType(name string, factory func() any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[name] = factory
}

// Encode implements TypeCodec.
func (c *DefaultCodec) Encode(v any) ([]byte, string, error) {
	className := strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
	if pm, ok := v.(proto.Message); ok {
		data, err := protojson.Marshal(pm)
		if err != nil {
			return nil, className, err
		}
		return data, className, nil
	}
	data, err := jsoncodec.Marshal(v)
	if err != nil {
		return nil, className, err
	}
	return data, className, nil
}

// Decode implements TypeCodec.
func (c *DefaultCodec) Decode(data []byte, className string) (any, error) {
	c.mu.RLock()
	factory, ok := c.types[className]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no type registered for class %q", className)
	}
	target := factory()
	if pm, ok := target.(proto.Message); ok {
		if err := protojson.Unmarshal(data, pm); err != nil {
			return nil, err
		}
		return pm, nil
	}
	if err := jsoncodec.Unmarshal(data, target); err != nil {
		return nil, err
	}
	return target, nil
}

// mimeTypeFromObject computes the synthetic content type for an arbitrary
// payload's runtime class, per the content-type grammar.
func mimeTypeFromObject(payload []byte, className string) string {
	if strings.ContainsAny(className, `[];"`) {
		className = `"` + className + `"`
	}
	return javaObjectMimePrefix + className
}

// classNameFromMimeType parses the `type` parameter out of a synthetic mime
// type, inverse of mimeTypeFromObject.
func classNameFromMimeType(mime string) (string, error) {
	idx := strings.Index(mime, ";")
	if idx < 0 {
		return "", fmt.Errorf("mime type %q has no type parameter", mime)
	}
	param := strings.TrimSpace(mime[idx+1:])
	const prefix = "type="
	if !strings.HasPrefix(param, prefix) {
		return "", fmt.Errorf("mime type %q has no type parameter", mime)
	}
	className := strings.TrimPrefix(param, prefix)
	className = strings.Trim(className, `"`)
	if className == "" {
		return "", fmt.Errorf("mime type %q has an empty type parameter", mime)
	}
	return className, nil
}

// SerializeIfNecessary mirrors MessageBusSupport.serializePayloadIfNecessary.
func SerializeIfNecessary(codec TypeCodec, env Envelope, to TargetContentType) (Envelope, error) {
	switch to {
	case TargetAll:
		return env, nil
	case TargetApplicationOctetStream:
		// fallthrough to encode below
	default:
		return Envelope{}, fmt.Errorf("'to' can only be ALL or APPLICATION_OCTET_STREAM, got %q", to)
	}

	originalContentType, hadOriginal := env.Metadata[HeaderContentType]

	var payloadBytes []byte
	var syntheticContentType string
	switch p := env.Payload.(type) {
	case []byte:
		payloadBytes = p
		syntheticContentType = MimeApplicationOctetStream
	case string:
		payloadBytes = []byte(p)
		syntheticContentType = MimeTextPlain
	default:
		className := fmt.Sprintf("%T", p)
		data, encodedClassName, err := codec.Encode(p)
		if err != nil {
			return Envelope{}, &SerializationError{ClassName: className, Err: err}
		}
		payloadBytes = data
		syntheticContentType = mimeTypeFromObject(data, encodedClassName)
	}

	newMeta := cloneMetadata(env.Metadata)
	newMeta[HeaderContentType] = syntheticContentType
	if hadOriginal {
		newMeta[HeaderOriginalContentType] = originalContentType
	}

	return Envelope{Payload: payloadBytes, Metadata: newMeta}, nil
}

// DeserializeIfNecessary mirrors MessageBusSupport.deserializePayloadIfNecessary.
func DeserializeIfNecessary(codec TypeCodec, env Envelope) (Envelope, error) {
	payloadBytes, ok := env.Payload.([]byte)
	if !ok {
		return env, nil
	}

	contentType := env.Metadata[HeaderContentType]
	if contentType == "" || contentType == MimeApplicationOctetStream {
		return env, nil
	}

	var decoded any
	if contentType == MimeTextPlain {
		decoded = string(payloadBytes)
	} else {
		className, err := classNameFromMimeType(contentType)
		if err != nil {
			return Envelope{}, &SerializationError{ClassName: contentType, Err: err}
		}
		decoded, err = codec.Decode(payloadBytes, className)
		if err != nil {
			return Envelope{}, &SerializationError{ClassName: className, Err: err}
		}
	}

	newMeta := cloneMetadata(env.Metadata)
	if original, had := newMeta[HeaderOriginalContentType]; had {
		newMeta[HeaderContentType] = original
		delete(newMeta, HeaderOriginalContentType)
	} else {
		delete(newMeta, HeaderContentType)
	}

	return Envelope{Payload: decoded, Metadata: newMeta}, nil
}
