package siws

import (
	"regexp"
	"slices"
	"strings"
)

var (
	headerLinePattern    = regexp.MustCompile(`^\s*(.+?)\s+wants you to sign in with your Solana account:\s*$`)
	fieldLinePattern     = regexp.MustCompile(`^\s*(URI|Version|Chain ID|Nonce|Issued At|Expiration Time|Not Before|Request ID):[ \t]*(.*?)\s*$`)
	resourcesLinePattern = regexp.MustCompile(`^\s*Resources:\s*$`)
	resourceLinePattern  = regexp.MustCompile(`^\s*-\s+(.+?)\s*$`)
)

var requiredLabels = []string{labelURI, labelVersion, labelChainID, labelNonce, labelIssuedAt}

// PatternParser matches every line against a set of line-anchored patterns.
// It accepts everything GrammarParser accepts, and also messages with CRLF
// line endings, indentation, extra or missing blank lines and suffix lines
// in any order. Repeated fields are rejected.
type PatternParser struct{}

func (PatternParser) Parse(raw string) (*RawFields, error) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	i := skipBlank(lines, 0)
	if i == len(lines) {
		return nil, errMissingField(FieldDomain)
	}

	header := headerLinePattern.FindStringSubmatch(lines[i])
	if header == nil {
		return nil, errMalformedLine(FieldDomain, i, "header line not found")
	}

	fields := &RawFields{
		Domain: header[1],
	}

	i = skipBlank(lines, i+1)
	if i == len(lines) {
		return nil, errMissingField(FieldAddress)
	}
	fields.Address = strings.TrimSpace(lines[i])

	i++
	if isBlankStatement(lines, i) {
		statement := lines[i+1]
		fields.Statement = &statement
		i += 2
	} else {
		i = skipBlank(lines, i)
		if i < len(lines) && isStatementLine(lines, i) {
			statement := lines[i]
			fields.Statement = &statement
			i++
		}
	}

	seen := map[string]bool{}
	inResources := false

	for ; i < len(lines); i++ {
		line := lines[i]

		if strings.TrimSpace(line) == "" {
			continue
		}

		if match := fieldLinePattern.FindStringSubmatch(line); match != nil {
			label, value := match[1], match[2]
			if seen[label] {
				return nil, errMalformedLine(labelFields[label], i, "appears more than once")
			}
			if value == "" {
				return nil, errMalformedLine(labelFields[label], i, "must not be empty")
			}
			seen[label] = true
			inResources = false

			fields.setRaw(label, value)
			continue
		}

		if resourcesLinePattern.MatchString(line) {
			if seen[labelResources] {
				return nil, errMalformedLine(FieldResources, i, "appears more than once")
			}
			seen[labelResources] = true
			inResources = true

			fields.Resources = []string{}
			continue
		}

		if match := resourceLinePattern.FindStringSubmatch(line); match != nil && inResources {
			fields.Resources = append(fields.Resources, match[1])
			continue
		}

		return nil, errMalformedLine("message", i, "unparsable line")
	}

	for _, label := range requiredLabels {
		if !seen[label] {
			return nil, errMissingField(labelFields[label])
		}
	}

	if fields.Resources != nil && len(fields.Resources) == 0 {
		return nil, errMalformedLine(FieldResources, -1, "must list at least one resource")
	}

	return fields, nil
}

// isBlankStatement reports whether a whitespace-only statement sits at
// lines[i+1], which is only the case in the exact layout PrepareMessage
// writes: an empty line, the statement, an empty line.
func isBlankStatement(lines []string, i int) bool {
	if i+2 >= len(lines) || lines[i] != "" || lines[i+2] != "" {
		return false
	}
	statement := lines[i+1]
	return statement != "" && strings.TrimSpace(statement) == ""
}

// isStatementLine reports whether lines[i], the first non-blank line after
// the address, is the statement. A line that looks like a suffix line is the
// statement when a blank line and then the suffix follow it, unless it names
// a required field that appears nowhere else.
func isStatementLine(lines []string, i int) bool {
	label, ok := suffixLabel(lines[i])
	if !ok {
		return true
	}

	if i+1 >= len(lines) || strings.TrimSpace(lines[i+1]) != "" {
		return false
	}

	next := skipBlank(lines, i+1)
	if next == len(lines) {
		return false
	}
	if _, ok := suffixLabel(lines[next]); !ok {
		return false
	}

	if !slices.Contains(requiredLabels, label) {
		return true
	}

	for _, rest := range lines[next:] {
		if other, ok := suffixLabel(rest); ok && other == label {
			return true
		}
	}

	return false
}

// suffixLabel returns the label of a field or Resources line.
func suffixLabel(line string) (string, bool) {
	if match := fieldLinePattern.FindStringSubmatch(line); match != nil {
		return match[1], true
	}
	if resourcesLinePattern.MatchString(line) {
		return labelResources, true
	}
	return "", false
}

func skipBlank(lines []string, from int) int {
	for from < len(lines) && strings.TrimSpace(lines[from]) == "" {
		from++
	}
	return from
}
