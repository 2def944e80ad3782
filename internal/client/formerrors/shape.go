// Package formerrors turns failed API calls into per-field form errors or a
// single user-facing notification.
package formerrors

import (
	"errors"

	"github.com/credisphere/credisphere/internal/client/apiclient"
)

// Kind names the recognised error body shapes.
type Kind int

const (
	// Unrecognized means no body could be extracted.
	Unrecognized Kind = iota
	// PathArray is {errors: [{path: [field, ...], message}]}.
	PathArray
	// FieldArray is {error: [{path: [field] | field, message}]}.
	FieldArray
	// ObjectMap is {errors: {field: message | [message, ...]}}.
	ObjectMap
	// PlainMessage is any other body, typically {message} or {error}.
	PlainMessage
)

func (k Kind) String() string {
	switch k {
	case PathArray:
		return "path_array"
	case FieldArray:
		return "field_array"
	case ObjectMap:
		return "object_map"
	case PlainMessage:
		return "plain_message"
	default:
		return "unrecognized"
	}
}

// Shape is a classified error body. Items is set for PathArray and
// FieldArray, Fields for ObjectMap. Body is nil only for Unrecognized.
type Shape struct {
	Kind   Kind
	Items  []any
	Fields map[string]any
	Body   map[string]any
}

// Extract normalises an error value into a body. The boolean is false when
// nothing could be extracted.
func Extract(errValue any) (map[string]any, bool) {
	switch v := errValue.(type) {
	case nil:
		return nil, false
	case map[string]any:
		if v == nil {
			return map[string]any{}, true
		}
		return v, true
	case error:
		var rerr *apiclient.ResponseError
		if errors.As(v, &rerr) {
			if rerr == nil {
				return nil, false
			}
			if rerr.Payload == nil {
				return map[string]any{}, true
			}
			return rerr.Payload, true
		}
		return map[string]any{"message": v.Error()}, true
	default:
		return nil, false
	}
}

// Classify picks the shape of body. An array under "errors" wins over an
// array under "error", which wins over an object under "errors".
func Classify(body map[string]any, ok bool) Shape {
	if !ok {
		return Shape{Kind: Unrecognized}
	}
	if items, isArray := body["errors"].([]any); isArray {
		return Shape{Kind: PathArray, Items: items, Body: body}
	}
	if items, isArray := body["error"].([]any); isArray {
		return Shape{Kind: FieldArray, Items: items, Body: body}
	}
	if fields, isObject := body["errors"].(map[string]any); isObject {
		return Shape{Kind: ObjectMap, Fields: fields, Body: body}
	}
	return Shape{Kind: PlainMessage, Body: body}
}
