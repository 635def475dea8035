package siws

import (
	"fmt"
	"regexp"
	"strings"
)

// RFC 3339 date-time
const dateTimePattern = `([0-9]+)-(0[1-9]|1[012])-(0[1-9]|[12][0-9]|3[01])[Tt]([01][0-9]|2[0-3]):([0-5][0-9]):([0-5][0-9]|60)(\.[0-9]+)?(([Zz])|([\+\-]([01][0-9]|2[0-3]):[0-5][0-9]))`

var (
	dateTimeLine         = regexp.MustCompile(`^` + dateTimePattern + `$`)
	digitsLine           = regexp.MustCompile(`^[0-9]+$`)
	base58AddressPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`)
)

type grammarLine struct {
	label    string
	optional bool
	check    func(value string) string
}

// grammarSuffix lists the "Label: value" lines in the only order accepted.
var grammarSuffix = []grammarLine{
	{label: labelURI, check: nonEmpty},
	{label: labelVersion, check: nonEmpty},
	{label: labelChainID, check: digits},
	{label: labelNonce, check: nonEmpty},
	{label: labelIssuedAt, check: dateTime},
	{label: labelExpirationTime, optional: true, check: dateTime},
	{label: labelNotBefore, optional: true, check: dateTime},
	{label: labelRequestID, optional: true, check: nonEmpty},
}

func nonEmpty(value string) string {
	if value == "" {
		return "must not be empty"
	}
	return ""
}

func digits(value string) string {
	if !digitsLine.MatchString(value) {
		return "must be a decimal number"
	}
	return ""
}

func dateTime(value string) string {
	if !dateTimeLine.MatchString(value) {
		return "must be an RFC 3339 date-time"
	}
	return ""
}

// GrammarParser accepts exactly the layout written by
// Message.PrepareMessage and nothing else.
type GrammarParser struct{}

func (GrammarParser) Parse(raw string) (*RawFields, error) {
	lines := strings.Split(raw, "\n")

	domain, ok := strings.CutSuffix(lines[0], headerSuffix)
	if !ok || domain == "" {
		return nil, errMalformedLine(FieldDomain, 0, fmt.Sprintf("first line must be %q", "<domain>"+headerSuffix))
	}

	if len(lines) < 2 {
		return nil, errMissingField(FieldAddress)
	}

	if !base58AddressPattern.MatchString(lines[1]) {
		return nil, errMalformedLine(FieldAddress, 1, "must be a base58 string")
	}

	fields := &RawFields{
		Domain:  domain,
		Address: lines[1],
	}

	i := 2
	if i >= len(lines) || lines[i] != "" {
		return nil, errMalformedLine(FieldAddress, i, "must be followed by an empty line")
	}
	i++

	if i >= len(lines) {
		return nil, errMissingField(FieldURI)
	}

	if lines[i] != "" {
		statement := lines[i]
		fields.Statement = &statement
		i++
	}

	if i >= len(lines) || lines[i] != "" {
		return nil, errMalformedLine(FieldStatement, i, "must be followed by an empty line")
	}
	i++

	for _, g := range grammarSuffix {
		field := labelFields[g.label]

		if i >= len(lines) {
			if g.optional {
				continue
			}
			return nil, errMissingField(field)
		}

		value, ok := strings.CutPrefix(lines[i], g.label+": ")
		if !ok {
			if g.optional {
				continue
			}
			return nil, errMalformedLine(field, i, fmt.Sprintf("expected line starting with %q", g.label+": "))
		}

		if g.check != nil {
			if reason := g.check(value); reason != "" {
				return nil, errMalformedLine(field, i, reason)
			}
		}

		fields.setRaw(g.label, value)
		i++
	}

	if i == len(lines) {
		return fields, nil
	}

	if lines[i] != labelResources+":" {
		return nil, errMalformedLine("message", i, "unexpected line")
	}
	i++

	resources := []string{}
	for ; i < len(lines); i++ {
		resource, ok := strings.CutPrefix(lines[i], "- ")
		if !ok || resource == "" {
			return nil, errMalformedLine(FieldResources, i, `expected line "- <uri>"`)
		}
		resources = append(resources, resource)
	}

	if len(resources) == 0 {
		return nil, errMalformedLine(FieldResources, i, "must list at least one resource")
	}

	fields.Resources = resources

	return fields, nil
}
