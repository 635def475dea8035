package siws

import (
	"fmt"
	"strconv"
)

// Field names, as used in records and errors.
const (
	FieldDomain         = "domain"
	FieldAddress        = "address"
	FieldStatement      = "statement"
	FieldURI            = "uri"
	FieldVersion        = "version"
	FieldChainID        = "chain_id"
	FieldNonce          = "nonce"
	FieldIssuedAt       = "issued_at"
	FieldExpirationTime = "expiration_time"
	FieldNotBefore      = "not_before"
	FieldRequestID      = "request_id"
	FieldResources      = "resources"
)

func resourceField(position int) string {
	return fmt.Sprintf("%s[%d]", FieldResources, position)
}

// Fields is a typed message record. Optional values are pointers; a nil
// pointer means the field is absent.
type Fields struct {
	Domain    string     `json:"domain" mapstructure:"domain"`
	Address   string     `json:"address" mapstructure:"address" validate:"required"`
	URI       string     `json:"uri" mapstructure:"uri"`
	Version   string     `json:"version" mapstructure:"version" validate:"required"`
	ChainID   uint64     `json:"chain_id" mapstructure:"chain_id"`
	IssuedAt  *Timestamp `json:"issued_at,omitempty" mapstructure:"issued_at"`
	Nonce     string     `json:"nonce" mapstructure:"nonce"`
	Statement *string    `json:"statement,omitempty" mapstructure:"statement"`

	ExpirationTime *Timestamp `json:"expiration_time,omitempty" mapstructure:"expiration_time"`
	NotBefore      *Timestamp `json:"not_before,omitempty" mapstructure:"not_before"`
	RequestID      *string    `json:"request_id,omitempty" mapstructure:"request_id"`
	Resources      []string   `json:"resources,omitempty" mapstructure:"resources"`
}

// RawFields is what a Parser extracts from message text: every value still
// as written.
type RawFields struct {
	Domain    string
	Address   string
	Statement *string
	URI       string
	Version   string
	ChainID   string
	Nonce     string
	IssuedAt  string

	ExpirationTime *string
	NotBefore      *string
	RequestID      *string
	Resources      []string
}

// Fields coerces the raw values into their field types. It does not run the
// field validators; NewMessage does.
func (r *RawFields) Fields() (Fields, error) {
	chainID, err := strconv.ParseUint(r.ChainID, 10, 64)
	if err != nil {
		return Fields{}, &InvalidFieldTypeError{Field: FieldChainID, Value: r.ChainID, Err: err}
	}

	issuedAt, err := coerceTimestamp(FieldIssuedAt, r.IssuedAt)
	if err != nil {
		return Fields{}, err
	}

	fields := Fields{
		Domain:    r.Domain,
		Address:   r.Address,
		URI:       r.URI,
		Version:   r.Version,
		ChainID:   chainID,
		IssuedAt:  &issuedAt,
		Nonce:     r.Nonce,
		Statement: copyString(r.Statement),
		RequestID: copyString(r.RequestID),
	}

	if r.ExpirationTime != nil {
		ts, err := coerceTimestamp(FieldExpirationTime, *r.ExpirationTime)
		if err != nil {
			return Fields{}, err
		}
		fields.ExpirationTime = &ts
	}

	if r.NotBefore != nil {
		ts, err := coerceTimestamp(FieldNotBefore, *r.NotBefore)
		if err != nil {
			return Fields{}, err
		}
		fields.NotBefore = &ts
	}

	if r.Resources != nil {
		fields.Resources = append([]string(nil), r.Resources...)
	}

	return fields, nil
}

func coerceTimestamp(field, value string) (Timestamp, error) {
	ts, err := ParseTimestamp(value)
	if err != nil {
		return Timestamp{}, &InvalidFieldTypeError{Field: field, Value: value, Err: err}
	}
	return ts, nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func copyTimestamp(ts *Timestamp) *Timestamp {
	if ts == nil {
		return nil
	}
	c := *ts
	return &c
}
