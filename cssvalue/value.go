package cssvalue

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/gorilla/css/scanner"

	"github.com/AdguardTeam/domguard/patterns"
)

// Parse errors.
const (
	// ErrEmptyValue is returned for a value with no components.
	ErrEmptyValue errors.Error = "empty css value"

	// ErrBadValue is returned when the tokenizer rejects the value.
	ErrBadValue errors.Error = "malformed css value"
)

// Kind discriminates the CSS value variants DOMGuard compares structurally.
type Kind int

// Value kinds.
const (
	KindOther Kind = iota
	KindList
	KindNumeric
	KindURI
	KindImage
	KindColor
)

// Value is a parsed CSS component value or list of component values.
type Value struct {
	// Kind selects which of the fields below are meaningful.
	Kind Kind

	// Text is the raw CSS text this value was parsed from.
	Text string

	// Sep is the list separator: ' ', ',' or '/'. Only for KindList.
	Sep byte

	// Items holds the list members. Only for KindList.
	Items []*Value

	// Number is the numeric payload of KindNumeric.
	Number float64

	// Unit is the dimension unit, "%" for percentages, "" for plain
	// numbers. Only for KindNumeric.
	Unit string

	// URL is the parsed url() reference of KindURI and KindImage; nil when
	// the reference does not parse as an absolute URL.
	URL *url.URL
}

// Parse parses a computed-value text into a Value for the given property.
// The property id decides whether url() components are image references.
func Parse(id PropertyID, text string) (v *Value, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyValue
	}

	s := scanner.New(text)

	var groups [][]*Value
	var current []*Value
	groupSep := byte(' ')

	// signed is true right after a '+' or '-' character token; the tokenizer
	// does not fold a sign into the number that follows it.
	signed := false

	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF {
			break
		}

		afterSign := signed
		signed = false

		switch tok.Type {
		case scanner.TokenError:
			return nil, ErrBadValue
		case scanner.TokenS, scanner.TokenComment, scanner.TokenBOM:
			continue
		case scanner.TokenChar:
			switch tok.Value {
			case ",":
				groups = append(groups, current)
				current = nil
			case "/":
				groupSep = '/'
			default:
				current = append(current, &Value{Kind: KindOther, Text: tok.Value})
				signed = tok.Value == "-" || tok.Value == "+"
			}
		case scanner.TokenURI:
			current = append(current, uriValue(id, tok.Value))
		case scanner.TokenNumber, scanner.TokenPercentage, scanner.TokenDimension:
			text := tok.Value
			if afterSign {
				text = current[len(current)-1].Text + text
				current = current[:len(current)-1]
			}
			current = append(current, numericValue(text))
		case scanner.TokenHash:
			current = append(current, hashValue(tok.Value))
		case scanner.TokenFunction:
			fn, ferr := consumeFunction(s, tok.Value)
			if ferr != nil {
				return nil, ferr
			}
			current = append(current, fn)
		case scanner.TokenIdent:
			current = append(current, identValue(tok.Value))
		default:
			current = append(current, &Value{Kind: KindOther, Text: tok.Value})
		}
	}

	groups = append(groups, current)

	v = assemble(groups, groupSep)
	if v == nil {
		return nil, ErrEmptyValue
	}
	v.Text = text

	return v, nil
}

// assemble collapses comma groups and their space/slash separated members
// into a single value, or a nested list when there is more than one.
func assemble(groups [][]*Value, groupSep byte) *Value {
	collapse := func(group []*Value) *Value {
		switch len(group) {
		case 0:
			return nil
		case 1:
			return group[0]
		}

		list := &Value{Kind: KindList, Sep: groupSep, Items: group}
		for _, item := range group {
			if list.Text != "" {
				list.Text += string(groupSep)
			}
			list.Text += item.Text
		}

		return list
	}

	if len(groups) == 1 {
		return collapse(groups[0])
	}

	list := &Value{Kind: KindList, Sep: ','}
	for _, group := range groups {
		item := collapse(group)
		if item == nil {
			return nil
		}
		list.Items = append(list.Items, item)
		if list.Text != "" {
			list.Text += ", "
		}
		list.Text += item.Text
	}

	return list
}

// uriValue builds a URI or image value from a url(...) token.
func uriValue(id PropertyID, text string) *Value {
	inner := strings.TrimSuffix(strings.TrimPrefix(text, "url("), ")")
	inner = strings.Trim(strings.TrimSpace(inner), `"'`)

	kind := KindURI
	if isImageProperty(id) {
		kind = KindImage
	}

	return &Value{Kind: kind, Text: text, URL: patterns.ParseURL(inner)}
}

// numericValue parses the numeric prefix and unit of a number, percentage or
// dimension token.
func numericValue(text string) *Value {
	i, n := 0, len(text)
	if i < n && (text[i] == '+' || text[i] == '-') {
		i++
	}
	for i < n && (text[i] >= '0' && text[i] <= '9' || text[i] == '.') {
		i++
	}
	if i < n && (text[i] == 'e' || text[i] == 'E') {
		j := i + 1
		if j < n && (text[j] == '+' || text[j] == '-') {
			j++
		}
		k := j
		for k < n && text[k] >= '0' && text[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}

	number, err := strconv.ParseFloat(text[:i], 64)
	if err != nil {
		return &Value{Kind: KindOther, Text: text}
	}

	return &Value{Kind: KindNumeric, Text: text, Number: number, Unit: text[i:]}
}

// hashValue classifies a #... token as a hex color when it has a valid hex
// color shape.
func hashValue(text string) *Value {
	digits := text[1:]
	switch len(digits) {
	case 3, 4, 6, 8:
	default:
		return &Value{Kind: KindOther, Text: text}
	}
	for i := 0; i < len(digits); i++ {
		if hexVal(digits[i]) < 0 {
			return &Value{Kind: KindOther, Text: text}
		}
	}

	return &Value{Kind: KindColor, Text: text}
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}

	return -1
}

// colorFunctions are the functional color notations.
var colorFunctions = map[string]struct{}{
	"rgb": {}, "rgba": {}, "hsl": {}, "hsla": {}, "hwb": {},
	"lab": {}, "lch": {}, "oklab": {}, "oklch": {}, "color": {},
}

// consumeFunction consumes a functional value up to its matching closing
// parenthesis and classifies it. Color functions become color values; any
// other function is opaque.
func consumeFunction(s *scanner.Scanner, head string) (v *Value, err error) {
	var sb strings.Builder
	sb.WriteString(head)
	depth := 1

	for depth > 0 {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF, scanner.TokenError:
			return nil, ErrBadValue
		case scanner.TokenFunction:
			depth++
		case scanner.TokenChar:
			switch tok.Value {
			case "(":
				depth++
			case ")":
				depth--
			}
		}
		sb.WriteString(tok.Value)
	}

	name := strings.ToLower(strings.TrimSuffix(head, "("))
	kind := KindOther
	if _, ok := colorFunctions[name]; ok {
		kind = KindColor
	}

	return &Value{Kind: kind, Text: sb.String()}, nil
}

// namedColors covers the CSS color keywords that show up in stored patterns.
// Computed colors are usually functional rgb() notation; the keywords matter
// for hand-authored constraint documents.
var namedColors = map[string]struct{}{
	"transparent": {}, "currentcolor": {},
	"aqua": {}, "black": {}, "blue": {}, "brown": {}, "cyan": {},
	"fuchsia": {}, "gray": {}, "green": {}, "grey": {}, "lime": {},
	"magenta": {}, "maroon": {}, "navy": {}, "olive": {}, "orange": {},
	"pink": {}, "purple": {}, "red": {}, "silver": {}, "teal": {},
	"white": {}, "yellow": {},
}

func identValue(text string) *Value {
	if _, ok := namedColors[strings.ToLower(text)]; ok {
		return &Value{Kind: KindColor, Text: text}
	}

	return &Value{Kind: KindOther, Text: text}
}
