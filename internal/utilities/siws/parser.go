package siws

import (
	"fmt"
	"strings"
)

// Parser extracts the raw field values from message text.
type Parser interface {
	Parse(raw string) (*RawFields, error)
}

// ParserMode selects a Parser. There is no fallback between modes.
type ParserMode int

const (
	// GrammarMode accepts only the exact layout written by PrepareMessage.
	GrammarMode ParserMode = iota
	// PatternMode matches each field with a line-anchored pattern and
	// tolerates whitespace, CRLF line endings, blank line variance and
	// reordered field lines.
	PatternMode
)

// ParserFor returns the parser for mode.
func ParserFor(mode ParserMode) (Parser, error) {
	switch mode {
	case GrammarMode:
		return GrammarParser{}, nil
	case PatternMode:
		return PatternParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownParserMode, int(mode))
	}
}

// ParseParserMode maps a configuration value to a ParserMode.
func ParseParserMode(value string) (ParserMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "grammar", "abnf", "strict":
		return GrammarMode, nil
	case "pattern", "regexp", "regex", "lenient":
		return PatternMode, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownParserMode, value)
	}
}

func (m ParserMode) String() string {
	switch m {
	case GrammarMode:
		return "grammar"
	case PatternMode:
		return "pattern"
	default:
		return fmt.Sprintf("ParserMode(%d)", int(m))
	}
}

func (m ParserMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *ParserMode) UnmarshalText(text []byte) error {
	mode, err := ParseParserMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Line labels of the message suffix.
const (
	labelURI            = "URI"
	labelVersion        = "Version"
	labelChainID        = "Chain ID"
	labelNonce          = "Nonce"
	labelIssuedAt       = "Issued At"
	labelExpirationTime = "Expiration Time"
	labelNotBefore      = "Not Before"
	labelRequestID      = "Request ID"
	labelResources      = "Resources"
)

var labelFields = map[string]string{
	labelURI:            FieldURI,
	labelVersion:        FieldVersion,
	labelChainID:        FieldChainID,
	labelNonce:          FieldNonce,
	labelIssuedAt:       FieldIssuedAt,
	labelExpirationTime: FieldExpirationTime,
	labelNotBefore:      FieldNotBefore,
	labelRequestID:      FieldRequestID,
	labelResources:      FieldResources,
}

// setRaw stores value for the field behind label.
func (r *RawFields) setRaw(label, value string) {
	switch label {
	case labelURI:
		r.URI = value
	case labelVersion:
		r.Version = value
	case labelChainID:
		r.ChainID = value
	case labelNonce:
		r.Nonce = value
	case labelIssuedAt:
		r.IssuedAt = value
	case labelExpirationTime:
		r.ExpirationTime = &value
	case labelNotBefore:
		r.NotBefore = &value
	case labelRequestID:
		r.RequestID = &value
	}
}
