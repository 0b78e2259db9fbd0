package parser

import (
	"bytes"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	identifierCode
	stringCode
	rawStringCode
	numberCode
	refCode
	openCurlyCode
	closeCurlyCode
	openParenCode
	closeParenCode
	openSquareCode
	closeSquareCode
	semicolonCode
	commaCode
	colonCode
	assignCode
	dotCode
	atCode
	arrowCode
	eqCode
	neCode
	leCode
	geCode
	fuzzyCode
	ltCode
	gtCode
	andCode
	orCode
	notCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	identifierToken = parsly.NewToken(identifierCode, "identifier", &identifierMatcher{})
	stringToken     = parsly.NewToken(stringCode, "string", &stringMatcher{})
	rawStringToken  = parsly.NewToken(rawStringCode, "raw string", &rawStringMatcher{})
	numberToken     = parsly.NewToken(numberCode, "number", &numberMatcher{})
	refToken        = parsly.NewToken(refCode, "${...}", &refMatcher{})

	openCurlyToken   = parsly.NewToken(openCurlyCode, "`{`", matcher.NewByte('{'))
	closeCurlyToken  = parsly.NewToken(closeCurlyCode, "`}`", matcher.NewByte('}'))
	openParenToken   = parsly.NewToken(openParenCode, "`(`", matcher.NewByte('('))
	closeParenToken  = parsly.NewToken(closeParenCode, "`)`", matcher.NewByte(')'))
	openSquareToken  = parsly.NewToken(openSquareCode, "`[`", matcher.NewByte('['))
	closeSquareToken = parsly.NewToken(closeSquareCode, "`]`", matcher.NewByte(']'))
	semicolonToken   = parsly.NewToken(semicolonCode, "`;`", matcher.NewByte(';'))
	commaToken       = parsly.NewToken(commaCode, "`,`", matcher.NewByte(','))
	colonToken       = parsly.NewToken(colonCode, "`:`", matcher.NewByte(':'))
	assignToken      = parsly.NewToken(assignCode, "`=`", &assignMatcher{})
	dotToken         = parsly.NewToken(dotCode, "`.`", matcher.NewByte('.'))
	atToken          = parsly.NewToken(atCode, "`@`", matcher.NewByte('@'))
	arrowToken       = parsly.NewToken(arrowCode, "`->`", newFragment("->"))

	eqToken    = parsly.NewToken(eqCode, "`==`", newFragment("=="))
	neToken    = parsly.NewToken(neCode, "`!=`", newFragment("!="))
	leToken    = parsly.NewToken(leCode, "`<=`", newFragment("<="))
	geToken    = parsly.NewToken(geCode, "`>=`", newFragment(">="))
	fuzzyToken = parsly.NewToken(fuzzyCode, "`=*`", newFragment("=*"))
	ltToken    = parsly.NewToken(ltCode, "`<`", matcher.NewByte('<'))
	gtToken    = parsly.NewToken(gtCode, "`>`", matcher.NewByte('>'))
	andToken   = parsly.NewToken(andCode, "`&&`", newFragment("&&"))
	orToken    = parsly.NewToken(orCode, "`||`", newFragment("||"))
	notToken   = parsly.NewToken(notCode, "`!`", &notMatcher{})
)

// comparison operators, longest first
var comparisonTokens = []*parsly.Token{eqToken, neToken, leToken, geToken, fuzzyToken, ltToken, gtToken}

// identifierMatcher matches [A-Za-z_][A-Za-z0-9_]*
type identifierMatcher struct{}

func (m *identifierMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size {
		return 0
	}
	if !isLetter(input[pos]) && input[pos] != '_' {
		return 0
	}
	matched := 1
	for i := pos + 1; i < size; i++ {
		if isLetter(input[i]) || isDigit(input[i]) || input[i] == '_' {
			matched++
			continue
		}
		break
	}
	return matched
}

// stringMatcher matches a double quoted literal honoring backslash escapes
type stringMatcher struct{}

func (m *stringMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos >= size || input[pos] != '"' {
		return 0
	}
	for i := pos + 1; i < size; i++ {
		switch input[i] {
		case '\\':
			i++
		case '"':
			return i - pos + 1
		}
	}
	return 0
}

// rawStringMatcher matches r"..." and r#"..."# (any number of #)
type rawStringMatcher struct{}

func (m *rawStringMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos+2 >= size || input[pos] != 'r' {
		return 0
	}
	i := pos + 1
	hashes := 0
	for i < size && input[i] == '#' {
		hashes++
		i++
	}
	if i >= size || input[i] != '"' {
		return 0
	}
	terminator := append([]byte{'"'}, bytes.Repeat([]byte{'#'}, hashes)...)
	end := bytes.Index(input[i+1:size], terminator)
	if end == -1 {
		return 0
	}
	return i + 1 + end + len(terminator) - pos
}

// numberMatcher matches unsigned integers and decimals
type numberMatcher struct{}

func (m *numberMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	matched := 0
	for i := pos; i < size && isDigit(input[i]); i++ {
		matched++
	}
	if matched == 0 {
		return 0
	}
	if pos+matched+1 < size && input[pos+matched] == '.' && isDigit(input[pos+matched+1]) {
		matched++
		for i := pos + matched; i < size && isDigit(input[i]); i++ {
			matched++
		}
	}
	if end := pos + matched; end < size && (isLetter(input[end]) || input[end] == '_') {
		return 0
	}
	return matched
}

// refMatcher matches ${...} with nested braces
type refMatcher struct{}

func (m *refMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize
	if pos+1 >= size || input[pos] != '$' || input[pos+1] != '{' {
		return 0
	}
	depth := 0
	for i := pos + 2; i < size; i++ {
		switch input[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i - pos + 1
			}
			depth--
		case '\n':
			return 0
		}
	}
	return 0
}

// assignMatcher matches = but not == or =*
type assignMatcher struct{}

func (m *assignMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	if pos >= cursor.InputSize || input[pos] != '=' {
		return 0
	}
	if pos+1 < cursor.InputSize && (input[pos+1] == '=' || input[pos+1] == '*') {
		return 0
	}
	return 1
}

// notMatcher matches ! but not !=
type notMatcher struct{}

func (m *notMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	if pos >= cursor.InputSize || input[pos] != '!' {
		return 0
	}
	if pos+1 < cursor.InputSize && input[pos+1] == '=' {
		return 0
	}
	return 1
}

type fragmentMatcher struct {
	value []byte
}

func (m *fragmentMatcher) Match(cursor *parsly.Cursor) int {
	if bytes.HasPrefix(cursor.Input[cursor.Pos:cursor.InputSize], m.value) {
		return len(m.value)
	}
	return 0
}

func newFragment(value string) parsly.Matcher {
	return &fragmentMatcher{value: []byte(value)}
}

// Helper functions
func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
