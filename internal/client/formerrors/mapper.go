package formerrors

import (
	"context"
	"log/slog"
)

const (
	// DefaultFailureMessage is shown when a body carries no usable message.
	DefaultFailureMessage = "Something went wrong. Please check the form and try again."
	// UnexpectedErrorMessage is shown when no body could be extracted.
	UnexpectedErrorMessage = "An unexpected error occurred."
)

// Outcome is the result of mapping one error. Exactly one of Fields and
// Notification is non-empty.
type Outcome struct {
	Kind         Kind
	Fields       map[string]string
	Notification string
}

// HasFieldErrors reports whether at least one field message was assigned.
func (o Outcome) HasFieldErrors() bool {
	return len(o.Fields) > 0
}

// Map maps errValue onto the known form fields. It has no side effects.
func Map(errValue any, known []string) Outcome {
	return mapShape(Classify(Extract(errValue)), known)
}

func mapShape(shape Shape, known []string) Outcome {
	out := Outcome{Kind: shape.Kind, Fields: map[string]string{}}
	allowed := make(map[string]struct{}, len(known))
	for _, f := range known {
		allowed[f] = struct{}{}
	}
	assign := func(field, message string) {
		if _, ok := allowed[field]; !ok || message == "" {
			return
		}
		if _, taken := out.Fields[field]; taken {
			return
		}
		out.Fields[field] = message
	}

	switch shape.Kind {
	case Unrecognized:
		out.Notification = UnexpectedErrorMessage
		return out
	case PathArray:
		for _, item := range shape.Items {
			entry, _ := item.(map[string]any)
			assign(firstPath(entry), str(entry["message"]))
		}
	case FieldArray:
		for _, item := range shape.Items {
			entry, _ := item.(map[string]any)
			field := firstPath(entry)
			if field == "" {
				field = str(entry["field"])
			}
			assign(field, str(entry["message"]))
		}
	case ObjectMap:
		for _, field := range known {
			switch v := shape.Fields[field].(type) {
			case []any:
				if len(v) > 0 {
					assign(field, str(v[0]))
				}
			case string:
				assign(field, v)
			}
		}
	case PlainMessage:
	}

	if len(out.Fields) == 0 {
		out.Notification = notification(shape.Body)
	}
	return out
}

func notification(body map[string]any) string {
	if msg := str(body["message"]); msg != "" {
		return msg
	}
	if msg := str(body["error"]); msg != "" {
		return msg
	}
	return DefaultFailureMessage
}

func firstPath(entry map[string]any) string {
	path, _ := entry["path"].([]any)
	if len(path) == 0 {
		return ""
	}
	return str(path[0])
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// FieldSetter receives field errors.
type FieldSetter interface {
	SetFieldError(field, message string)
}

// FieldSetterFunc adapts a function to FieldSetter.
type FieldSetterFunc func(field, message string)

func (f FieldSetterFunc) SetFieldError(field, message string) { f(field, message) }

// Notifier receives the generic notification.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Mapper applies outcomes to a form and logs what it saw.
type Mapper struct {
	Logger *slog.Logger
}

// Apply maps errValue and delivers the outcome, field errors in the order of
// known. It returns true when any field error was set.
func (m Mapper) Apply(errValue any, known []string, fields FieldSetter, notifier Notifier) bool {
	out := Map(errValue, known)
	if m.Logger != nil {
		m.Logger.LogAttrs(context.Background(), slog.LevelDebug, "form error mapped",
			slog.String("shape", out.Kind.String()),
			slog.Int("fields", len(out.Fields)),
			slog.Any("error", errValue),
		)
	}
	if out.HasFieldErrors() {
		if fields != nil {
			for _, f := range known {
				if msg, ok := out.Fields[f]; ok {
					fields.SetFieldError(f, msg)
				}
			}
		}
		return true
	}
	if notifier != nil {
		notifier.Notify(out.Notification)
	}
	return false
}
