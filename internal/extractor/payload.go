package extractor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/user/memorial-extractor/internal/entity"
)

var (
	// ErrStructuredDataMissing is returned when no script declares the payload variable.
	ErrStructuredDataMissing = errors.New("structured data block missing")
	// ErrStructuredDataMalformed is returned when the declared value is not a well-formed object literal.
	ErrStructuredDataMalformed = errors.New("structured data block malformed")
)

// PayloadVariable is the script variable holding the memorial payload.
const PayloadVariable = "findagrave"

var payloadDecl = regexp.MustCompile(`var\s+` + PayloadVariable + `\s*=`)

// ExtractPayload finds the script declaring the payload variable and decodes
// the object literal assigned to it. The literal is read by a JSON tokenizer
// that stops at its matching closing brace, so whatever follows the
// declaration does not matter. Literals that are not strict JSON are
// rewritten from JavaScript object syntax before decoding.
func ExtractPayload(doc *goquery.Document) (entity.Payload, error) {
	var script string
	var found bool
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if payloadDecl.MatchString(text) {
			script, found = text, true
			return false
		}
		return true
	})
	if !found {
		return nil, fmt.Errorf("%w: no script declares var %s", ErrStructuredDataMissing, PayloadVariable)
	}
	return DecodePayload(script)
}

// DecodePayload decodes the object literal assigned to the payload variable
// inside script.
func DecodePayload(script string) (entity.Payload, error) {
	loc := payloadDecl.FindStringIndex(script)
	if loc == nil {
		return nil, fmt.Errorf("%w: no script declares var %s", ErrStructuredDataMissing, PayloadVariable)
	}

	dec := jsontext.NewDecoder(strings.NewReader(script[loc[1]:]),
		jsontext.AllowDuplicateNames(true),
		jsontext.AllowInvalidUTF8(true),
	)
	if kind := dec.PeekKind(); kind != '{' {
		return nil, fmt.Errorf("%w: value of var %s is not an object literal", ErrStructuredDataMalformed, PayloadVariable)
	}
	literal, err := dec.ReadValue()
	if err != nil {
		// Not strict JSON: retry as a JavaScript object literal.
		relaxed, jsErr := jsObjectToJSON(script[loc[1]:])
		if jsErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrStructuredDataMalformed, jsErr)
		}
		literal = relaxed
	}
	return decodeObject(literal)
}

// decodeObject flattens a JSON object into a Payload.
func decodeObject(literal jsontext.Value) (entity.Payload, error) {
	dec := jsontext.NewDecoder(strings.NewReader(string(literal)),
		jsontext.AllowDuplicateNames(true),
		jsontext.AllowInvalidUTF8(true),
	)
	if _, err := dec.ReadToken(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructuredDataMalformed, err)
	}

	payload := entity.Payload{}
	for dec.PeekKind() != '}' {
		name, err := dec.ReadToken()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStructuredDataMalformed, err)
		}
		// The token is only valid until the next decoder call.
		key := name.String()
		value, err := dec.ReadValue()
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrStructuredDataMalformed, key, err)
		}
		scalar, err := entity.DecodeScalar(value)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrStructuredDataMalformed, key, err)
		}
		payload[key] = scalar
	}
	return payload, nil
}
