package siws

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

var (
	mapstructureFieldPattern  = regexp.MustCompile(`'([^']*)'`)
	mapstructureUnusedPattern = regexp.MustCompile(`has invalid keys: (.+)$`)
)

var timestampType = reflect.TypeOf(Timestamp{})

// timestampHook lets records carry timestamps as text or as time.Time.
func timestampHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timestampType {
		return data, nil
	}

	switch value := data.(type) {
	case string:
		return ParseTimestamp(value)
	case time.Time:
		return NewTimestamp(value), nil
	case Timestamp:
		return value, nil
	default:
		return data, nil
	}
}

// NewMessageFromMap builds a Message from a loosely typed record such as a
// decoded JSON object, keyed by the Field* names. Values of the wrong type
// fail with an InvalidFieldTypeError, unknown keys with a ValidationError.
func NewMessageFromMap(record map[string]any) (*Message, error) {
	var fields Fields

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  timestampHook,
		ErrorUnused: true,
		Result:      &fields,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(record); err != nil {
		return nil, recordDecodeError(err)
	}

	return NewMessage(fields)
}

func recordDecodeError(err error) error {
	messages := []string{err.Error()}

	var decodeErr *mapstructure.Error
	if errors.As(err, &decodeErr) && len(decodeErr.Errors) > 0 {
		messages = decodeErr.Errors
	}

	var unknown string
	for _, message := range messages {
		if match := mapstructureUnusedPattern.FindStringSubmatch(message); match != nil {
			unknown = match[1]
			continue
		}

		field := "record"
		if match := mapstructureFieldPattern.FindStringSubmatch(message); match != nil && match[1] != "" {
			field = match[1]
		}

		return &InvalidFieldTypeError{Field: field, Err: err}
	}

	field, _, _ := strings.Cut(unknown, ", ")
	return errInvalidField(field, "is not a known field", unknown)
}
