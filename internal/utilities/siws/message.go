package siws

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const headerSuffix = " wants you to sign in with your Solana account:"

// Message is a validated Sign In With Solana message. A Message never
// changes after construction and is safe to share between goroutines.
type Message struct {
	domain    string
	address   string
	statement *string
	uri       string
	version   string
	chainID   uint64
	nonce     string
	issuedAt  *Timestamp

	expirationTime *Timestamp
	notBefore      *Timestamp
	requestID      *string
	resources      []string
}

// NewMessage validates fields and builds a Message from them. No Message
// exists for fields that fail validation.
func NewMessage(fields Fields) (*Message, error) {
	if err := fieldValidator().Struct(fields); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, errInvalidField(verrs[0].Field(), "is required", "")
		}
		return nil, err
	}

	if _, err := ValidateDomain(fields.Domain); err != nil {
		return nil, err
	}

	if _, err := ValidateURI(FieldURI, fields.URI); err != nil {
		return nil, err
	}

	if _, err := ValidateNonce(fields.Nonce); err != nil {
		return nil, err
	}

	if fields.Statement != nil {
		if _, err := ValidateStatement(*fields.Statement); err != nil {
			return nil, err
		}
	}

	if fields.Resources != nil {
		if _, err := ValidateResources(fields.Resources); err != nil {
			return nil, err
		}
	}

	m := &Message{
		domain:         fields.Domain,
		address:        fields.Address,
		statement:      copyString(fields.Statement),
		uri:            fields.URI,
		version:        fields.Version,
		chainID:        fields.ChainID,
		nonce:          fields.Nonce,
		issuedAt:       copyTimestamp(fields.IssuedAt),
		expirationTime: copyTimestamp(fields.ExpirationTime),
		notBefore:      copyTimestamp(fields.NotBefore),
		requestID:      copyString(fields.RequestID),
	}

	// an empty Request ID is never written, so it is not kept either
	if m.requestID != nil && *m.requestID == "" {
		m.requestID = nil
	}

	if fields.Resources != nil {
		m.resources = append([]string(nil), fields.Resources...)
	}

	return m, nil
}

// ParseMessage parses raw message text with the parser selected by mode and
// validates the result.
func ParseMessage(raw string, mode ParserMode) (*Message, error) {
	parser, err := ParserFor(mode)
	if err != nil {
		return nil, err
	}

	rawFields, err := parser.Parse(raw)
	if err != nil {
		return nil, err
	}

	fields, err := rawFields.Fields()
	if err != nil {
		return nil, err
	}

	return NewMessage(fields)
}

func (m *Message) Domain() string {
	return m.domain
}

func (m *Message) Address() string {
	return m.address
}

func (m *Message) Statement() *string {
	return copyString(m.statement)
}

func (m *Message) URI() string {
	return m.uri
}

func (m *Message) Version() string {
	return m.version
}

func (m *Message) ChainID() uint64 {
	return m.chainID
}

func (m *Message) Nonce() string {
	return m.nonce
}

// IssuedAt returns nil until the message has been resolved with
// WithResolvedTimestamp or was built with an Issued At value.
func (m *Message) IssuedAt() *Timestamp {
	return copyTimestamp(m.issuedAt)
}

func (m *Message) ExpirationTime() *Timestamp {
	return copyTimestamp(m.expirationTime)
}

func (m *Message) NotBefore() *Timestamp {
	return copyTimestamp(m.notBefore)
}

func (m *Message) RequestID() *string {
	return copyString(m.requestID)
}

func (m *Message) Resources() []string {
	if m.resources == nil {
		return nil
	}
	return append([]string(nil), m.resources...)
}

// Fields returns the message as a record. NewMessage(m.Fields()) yields an
// equal message.
func (m *Message) Fields() Fields {
	return Fields{
		Domain:         m.domain,
		Address:        m.address,
		URI:            m.uri,
		Version:        m.version,
		ChainID:        m.chainID,
		IssuedAt:       m.IssuedAt(),
		Nonce:          m.nonce,
		Statement:      m.Statement(),
		ExpirationTime: m.ExpirationTime(),
		NotBefore:      m.NotBefore(),
		RequestID:      m.RequestID(),
		Resources:      m.Resources(),
	}
}

// WithResolvedTimestamp returns a message whose Issued At is set, using now
// if the receiver has none. The receiver is not modified.
func (m *Message) WithResolvedTimestamp(now time.Time) *Message {
	if m.issuedAt != nil {
		return m
	}

	resolved := *m
	ts := NewTimestamp(now)
	resolved.issuedAt = &ts

	return &resolved
}

// PrepareMessage returns the exact text that is signed by the wallet.
//
// A Chain ID of 0 is written as 1, so 0 cannot be told apart from an unset
// chain once serialized.
func (m *Message) PrepareMessage() (string, error) {
	if m.issuedAt == nil {
		return "", ErrUnresolvedIssuedAt
	}

	prefix := strings.Join([]string{m.domain + headerSuffix, m.address}, "\n")

	chainID := m.chainID
	if chainID == 0 {
		chainID = 1
	}

	suffix := []string{
		fmt.Sprintf("URI: %s", m.uri),
		fmt.Sprintf("Version: %s", m.version),
		fmt.Sprintf("Chain ID: %d", chainID),
		fmt.Sprintf("Nonce: %s", m.nonce),
		fmt.Sprintf("Issued At: %s", m.issuedAt),
	}

	if m.expirationTime != nil {
		suffix = append(suffix, fmt.Sprintf("Expiration Time: %s", m.expirationTime))
	}

	if m.notBefore != nil {
		suffix = append(suffix, fmt.Sprintf("Not Before: %s", m.notBefore))
	}

	if m.requestID != nil {
		suffix = append(suffix, fmt.Sprintf("Request ID: %s", *m.requestID))
	}

	if len(m.resources) > 0 {
		lines := []string{"Resources:"}
		for _, resource := range m.resources {
			lines = append(lines, "- "+resource)
		}
		suffix = append(suffix, strings.Join(lines, "\n"))
	}

	if m.statement != nil {
		prefix = strings.Join([]string{prefix, *m.statement}, "\n\n")
	} else {
		prefix += "\n"
	}

	return strings.Join([]string{prefix, strings.Join(suffix, "\n")}, "\n\n"), nil
}

// Bytes is PrepareMessage as UTF-8 bytes.
func (m *Message) Bytes() ([]byte, error) {
	text, err := m.PrepareMessage()
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

func (m *Message) String() string {
	text, err := m.PrepareMessage()
	if err != nil {
		return fmt.Sprintf("siws.Message{domain: %q, address: %q, unresolved}", m.domain, m.address)
	}
	return text
}
