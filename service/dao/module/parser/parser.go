package parser

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/value"
	"github.com/viant/parsly"
)

// Parse parses WFL source into a compilation unit.
func Parse(name string, input []byte) (*ast.File, error) {
	source := stripComments(input)
	p := &parser{name: name, cursor: parsly.NewCursor(name, source, 0), source: source}
	return p.parseFile()
}

// ParseCondition parses a standalone condition expression such as `${a} == 1 && ${b}`.
func ParseCondition(name, text string) (ast.Condition, error) {
	source := []byte(text)
	p := &parser{name: name, cursor: parsly.NewCursor(name, source, 0), source: source}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf("end of condition")
	}
	return cond, nil
}

type parser struct {
	name   string
	source []byte
	cursor *parsly.Cursor
}

func (p *parser) parseFile() (*ast.File, error) {
	file := &ast.File{Name: p.name}
	for {
		if p.eof() {
			return file, nil
		}
		annotations, err := p.parseAnnotations()
		if err != nil {
			return nil, err
		}
		pos := p.pos()
		switch {
		case p.keyword("extern"):
			ref, err := p.parseExtern(pos)
			if err != nil {
				return nil, err
			}
			file.Externs = append(file.Externs, ref)
		case p.keyword("mod"):
			module, err := p.parseModule(annotations, pos)
			if err != nil {
				return nil, err
			}
			file.Modules = append(file.Modules, module)
		default:
			return nil, p.errorf("`mod` or `extern`")
		}
	}
}

func (p *parser) parseExtern(pos ast.Pos) (*ast.ExternRef, error) {
	if !p.keyword("mod") {
		return nil, p.errorf("`mod`")
	}
	ref := &ast.ExternRef{Pos: pos}
	for {
		name, err := p.identifier()
		if err != nil {
			return nil, err
		}
		ref.Names = append(ref.Names, name)
		if !p.match(commaToken) {
			break
		}
	}
	if err := p.expect(openCurlyToken); err != nil {
		return nil, err
	}
	for !p.match(closeCurlyToken) {
		prop, err := p.parseProp()
		if err != nil {
			return nil, err
		}
		ref.Props = append(ref.Props, prop)
	}
	return ref, nil
}

func (p *parser) parseModule(annotations ast.Annotations, pos ast.Pos) (*ast.Module, error) {
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	module := &ast.Module{Name: name, Annotations: annotations, Pos: pos}
	if p.match(colonToken) {
		if module.Mixes, err = p.parseNames(); err != nil {
			return nil, err
		}
	}
	if err = p.expect(openCurlyToken); err != nil {
		return nil, err
	}
	for !p.match(closeCurlyToken) {
		if p.eof() {
			return nil, p.errorf("`}`")
		}
		annotations, err := p.parseAnnotations()
		if err != nil {
			return nil, err
		}
		pos := p.pos()
		switch {
		case p.keywordDecl("env"):
			env, err := p.parseEnv(name, annotations, pos)
			if err != nil {
				return nil, err
			}
			module.Envs = append(module.Envs, env)
		case p.keywordDecl("flow"):
			flow, err := p.parseFlow(name, annotations, pos)
			if err != nil {
				return nil, err
			}
			if declared := module.Flow(flow.Name); declared != nil && (declared.Body == nil || flow.Body == nil) {
				mergeDeclaration(declared, flow)
				continue
			}
			module.Flows = append(module.Flows, flow)
		case p.keywordDecl("entry"):
			refs, err := p.parseRefs()
			if err != nil {
				return nil, err
			}
			module.Entry = append(module.Entry, refs...)
			if err = p.expect(semicolonToken); err != nil {
				return nil, err
			}
		case p.keywordDecl("exit"):
			refs, err := p.parseRefs()
			if err != nil {
				return nil, err
			}
			module.Exit = append(module.Exit, refs...)
			if err = p.expect(semicolonToken); err != nil {
				return nil, err
			}
		default:
			prop, err := p.parseProp()
			if err != nil {
				return nil, err
			}
			module.Props = append(module.Props, prop)
		}
	}
	return module, nil
}

func (p *parser) parseEnv(module string, annotations ast.Annotations, pos ast.Pos) (*ast.Env, error) {
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	env := &ast.Env{Module: module, Name: name, Annotations: annotations, Pos: pos}
	if p.match(colonToken) {
		if env.Mixes, err = p.parseNames(); err != nil {
			return nil, err
		}
	}
	if p.match(semicolonToken) {
		return env, nil
	}
	if err = p.expect(openCurlyToken); err != nil {
		return nil, err
	}
	for !p.match(closeCurlyToken) {
		if p.eof() {
			return nil, p.errorf("`}`")
		}
		prop, err := p.parseProp()
		if err != nil {
			return nil, err
		}
		env.Props = append(env.Props, prop)
	}
	return env, nil
}

func (p *parser) parseFlow(module string, annotations ast.Annotations, pos ast.Pos) (*ast.Flow, error) {
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	flow := &ast.Flow{Module: module, Name: name, Annotations: annotations, Pos: pos}
	switch {
	case p.match(openSquareToken):
		if flow.Pre, err = p.parseRefList(); err != nil {
			return nil, err
		}
	case p.match(colonToken):
		if flow.Pre, err = p.parseRefs(); err != nil {
			return nil, err
		}
	}
	if p.match(arrowToken) {
		if p.match(openSquareToken) {
			flow.Post, err = p.parseRefList()
		} else {
			flow.Post, err = p.parseRefs()
		}
		if err != nil {
			return nil, err
		}
	}
	if p.match(semicolonToken) {
		return flow, nil
	}
	if err = p.expect(openCurlyToken); err != nil {
		return nil, err
	}
	if flow.Body, err = p.parseStatements(); err != nil {
		return nil, err
	}
	return flow, nil
}

// mergeDeclaration folds a bodyless flow declaration (flow a [b];) into its other declaration.
func mergeDeclaration(declared, flow *ast.Flow) {
	declared.Pre = append(declared.Pre, flow.Pre...)
	declared.Post = append(declared.Post, flow.Post...)
	declared.Annotations = declared.Annotations.Merge(flow.Annotations)
	if flow.Body != nil {
		declared.Body = flow.Body
		declared.Pos = flow.Pos
	}
}

// parseStatements parses until the closing `}` (consumed).
func (p *parser) parseStatements() ([]ast.Node, error) {
	nodes := []ast.Node{}
	for {
		if p.match(closeCurlyToken) {
			return nodes, nil
		}
		if p.eof() {
			return nil, p.errorf("`}`")
		}
		if p.match(semicolonToken) {
			continue
		}
		node, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
}

func (p *parser) parseStatement() (ast.Node, error) {
	annotations, err := p.parseAnnotations()
	if err != nil {
		return nil, err
	}
	pos := p.pos()
	switch {
	case p.keywordDecl("if"):
		return p.parseIf(pos)
	case p.keywordDecl("for"):
		return p.parseFor(pos)
	case p.keywordDecl("call"):
		name, err := p.refName()
		if err != nil {
			return nil, err
		}
		if err = p.expect(semicolonToken); err != nil {
			return nil, err
		}
		return &ast.CallFlow{Ref: ast.ParseFlowRef(name, pos), Annotations: annotations, Pos: pos}, nil
	}
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if p.match(assignToken) {
		v, err := p.parseValue(false)
		if err != nil {
			return nil, err
		}
		if err = p.expect(semicolonToken); err != nil {
			return nil, err
		}
		return &ast.SetVar{Name: name, Value: v, Annotations: annotations, Pos: pos}, nil
	}
	action := &ast.Action{Service: name, Annotations: annotations, Pos: pos}
	if p.match(dotToken) {
		if action.Method, err = p.identifier(); err != nil {
			return nil, err
		}
	}
	if err = p.expect(openParenToken); err != nil {
		return nil, err
	}
	if action.Args, err = p.parseArgs(false); err != nil {
		return nil, err
	}
	if err = p.expect(semicolonToken); err != nil {
		return nil, err
	}
	return action, nil
}

func (p *parser) parseIf(pos ast.Pos) (ast.Node, error) {
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	node := &ast.If{Cond: cond, Pos: pos}
	if err = p.expect(openCurlyToken); err != nil {
		return nil, err
	}
	if node.Then, err = p.parseStatements(); err != nil {
		return nil, err
	}
	if !p.keywordDecl("else") {
		return node, nil
	}
	elsePos := p.pos()
	if p.keywordDecl("if") {
		nested, err := p.parseIf(elsePos)
		if err != nil {
			return nil, err
		}
		node.Else = []ast.Node{nested}
		return node, nil
	}
	if err = p.expect(openCurlyToken); err != nil {
		return nil, err
	}
	if node.Else, err = p.parseStatements(); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) parseFor(pos ast.Pos) (ast.Node, error) {
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if !p.keyword("in") {
		return nil, p.errorf("`in`")
	}
	in, err := p.parseValue(false)
	if err != nil {
		return nil, err
	}
	node := &ast.For{Var: name, In: in, Pos: pos}
	if err = p.expect(openCurlyToken); err != nil {
		return nil, err
	}
	if node.Body, err = p.parseStatements(); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) parseCondition() (ast.Condition, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(orToken) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Logic{Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Condition, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.match(andToken) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Logic{Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Condition, error) {
	if p.match(notToken) {
		cond, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Cond: cond}, nil
	}
	if p.match(openParenToken) {
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		if err = p.expect(closeParenToken); err != nil {
			return nil, err
		}
		return cond, nil
	}
	left, err := p.parseValue(false)
	if err != nil {
		return nil, err
	}
	matched := p.cursor.MatchAfterOptional(whitespaceToken, comparisonTokens...)
	op := ""
	for _, token := range comparisonTokens {
		if matched.Code == token.Code {
			op = matched.Text(p.cursor)
		}
	}
	if op == "" {
		return &ast.Truth{Value: left}, nil
	}
	right, err := p.parseValue(false)
	if err != nil {
		return nil, err
	}
	return &ast.Compare{Op: op, Left: left, Right: right}, nil
}

// parseArgs parses arguments after `(` up to and including `)`.
func (p *parser) parseArgs(bare bool) ([]*ast.Arg, error) {
	var args []*ast.Arg
	if p.match(closeParenToken) {
		return args, nil
	}
	for {
		pos := p.pos()
		arg := &ast.Arg{Pos: pos}
		start := p.cursor.Pos
		if name, err := p.identifier(); err == nil && (p.match(assignToken) || p.match(colonToken)) {
			arg.Name = name
		} else {
			p.cursor.Pos = start
		}
		v, err := p.parseValue(bare)
		if err != nil {
			return nil, err
		}
		arg.Value = v
		args = append(args, arg)
		if p.match(commaToken) {
			continue
		}
		if err = p.expect(closeParenToken); err != nil {
			return nil, err
		}
		return args, nil
	}
}

func (p *parser) parseAnnotations() (ast.Annotations, error) {
	var ret ast.Annotations
	for {
		pos := p.pos()
		if !p.match(atToken) {
			return ret, nil
		}
		name, err := p.identifier()
		if err != nil {
			return nil, err
		}
		annotation := &ast.Annotation{Name: name, Pos: pos}
		if p.matchNow(openParenToken) {
			if annotation.Args, err = p.parseArgs(true); err != nil {
				return nil, err
			}
		}
		ret = append(ret, annotation)
	}
}

func (p *parser) parseProp() (*ast.Var, error) {
	pos := p.pos()
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if !p.match(assignToken) && !p.match(colonToken) {
		return nil, p.errorf("`=`")
	}
	v, err := p.parseValue(false)
	if err != nil {
		return nil, err
	}
	if err = p.expect(semicolonToken); err != nil {
		return nil, err
	}
	return &ast.Var{Name: name, Value: v, Pos: pos}, nil
}

// parseValue parses a literal; bare admits unquoted identifiers and dotted paths as strings.
func (p *parser) parseValue(bare bool) (value.Value, error) {
	matched := p.cursor.MatchAfterOptional(whitespaceToken, stringToken, rawStringToken, numberToken, refToken, openSquareToken, openCurlyToken, identifierToken)
	switch matched.Code {
	case stringToken.Code:
		return value.String(unquote(matched.Text(p.cursor))), nil
	case rawStringToken.Code:
		return value.String(unraw(matched.Text(p.cursor))), nil
	case numberToken.Code:
		text := matched.Text(p.cursor)
		if strings.Contains(text, ".") {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return value.Value{}, p.errorf("number")
			}
			return value.Float(f), nil
		}
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return value.Value{}, p.errorf("number")
		}
		return value.Int(i), nil
	case refToken.Code:
		return value.String(matched.Text(p.cursor)), nil
	case openSquareToken.Code:
		return p.parseList()
	case openCurlyToken.Code:
		return p.parseObject()
	case identifierToken.Code:
		text := matched.Text(p.cursor)
		switch text {
		case "true":
			return value.Bool(true), nil
		case "false":
			return value.Bool(false), nil
		}
		if bare {
			for p.matchNow(dotToken) {
				next, err := p.identifier()
				if err != nil {
					return value.Value{}, err
				}
				text += "." + next
			}
			return value.String(text), nil
		}
		p.cursor.Pos -= len(text)
	}
	return value.Value{}, p.errorf("value")
}

func (p *parser) parseList() (value.Value, error) {
	var items []value.Value
	for {
		if p.match(closeSquareToken) {
			return value.List(items...), nil
		}
		item, err := p.parseValue(false)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, item)
		if !p.match(commaToken) {
			if err = p.expect(closeSquareToken); err != nil {
				return value.Value{}, err
			}
			return value.List(items...), nil
		}
	}
}

func (p *parser) parseObject() (value.Value, error) {
	obj := value.Object{}
	for {
		if p.match(closeCurlyToken) {
			return value.NewObject(obj), nil
		}
		var key string
		matched := p.cursor.MatchAfterOptional(whitespaceToken, identifierToken, stringToken)
		switch matched.Code {
		case identifierToken.Code:
			key = matched.Text(p.cursor)
		case stringToken.Code:
			key = unquote(matched.Text(p.cursor))
		default:
			return value.Value{}, p.errorf("object key")
		}
		if !p.match(colonToken) && !p.match(assignToken) {
			return value.Value{}, p.errorf("`:`")
		}
		item, err := p.parseValue(false)
		if err != nil {
			return value.Value{}, err
		}
		obj.Set(key, item)
		if !p.match(commaToken) {
			if err = p.expect(closeCurlyToken); err != nil {
				return value.Value{}, err
			}
			return value.NewObject(obj), nil
		}
	}
}

func (p *parser) parseNames() ([]string, error) {
	var ret []string
	for {
		name, err := p.refName()
		if err != nil {
			return nil, err
		}
		ret = append(ret, name)
		if !p.match(commaToken) {
			return ret, nil
		}
	}
}

func (p *parser) parseRefs() ([]*ast.FlowRef, error) {
	var ret []*ast.FlowRef
	for {
		pos := p.pos()
		name, err := p.refName()
		if err != nil {
			return nil, err
		}
		ret = append(ret, ast.ParseFlowRef(name, pos))
		if !p.match(commaToken) {
			return ret, nil
		}
	}
}

// parseRefList parses refs after `[` up to and including `]`.
func (p *parser) parseRefList() ([]*ast.FlowRef, error) {
	if p.match(closeSquareToken) {
		return nil, nil
	}
	refs, err := p.parseRefs()
	if err != nil {
		return nil, err
	}
	return refs, p.expect(closeSquareToken)
}

func (p *parser) refName() (string, error) {
	name, err := p.identifier()
	if err != nil {
		return "", err
	}
	for p.matchNow(dotToken) {
		next, err := p.identifier()
		if err != nil {
			return "", err
		}
		name += "." + next
	}
	return name, nil
}

func (p *parser) identifier() (string, error) {
	matched := p.cursor.MatchAfterOptional(whitespaceToken, identifierToken)
	if matched.Code != identifierToken.Code {
		return "", p.errorf("identifier")
	}
	return matched.Text(p.cursor), nil
}

// keyword consumes word when it is the next identifier.
func (p *parser) keyword(word string) bool {
	start := p.cursor.Pos
	matched := p.cursor.MatchAfterOptional(whitespaceToken, identifierToken)
	if matched.Code == identifierToken.Code && matched.Text(p.cursor) == word {
		return true
	}
	p.cursor.Pos = start
	return false
}

// keywordDecl consumes word unless it is used as a plain name, e.g. `entry = ...` or `call(...)`.
func (p *parser) keywordDecl(word string) bool {
	start := p.cursor.Pos
	if !p.keyword(word) {
		return false
	}
	afterWord := p.cursor.Pos
	candidates := []*parsly.Token{assignToken}
	switch word {
	case "call":
		candidates = append(candidates, openParenToken, dotToken)
	case "entry", "exit":
		candidates = append(candidates, colonToken)
	}
	next := p.cursor.MatchAfterOptional(whitespaceToken, candidates...)
	for _, candidate := range candidates {
		if next.Code == candidate.Code {
			p.cursor.Pos = start
			return false
		}
	}
	p.cursor.Pos = afterWord
	return true
}

// match consumes token after optional whitespace.
func (p *parser) match(token *parsly.Token) bool {
	start := p.cursor.Pos
	matched := p.cursor.MatchAfterOptional(whitespaceToken, token)
	if matched.Code == token.Code {
		return true
	}
	p.cursor.Pos = start
	return false
}

// matchNow consumes token only when it immediately follows.
func (p *parser) matchNow(token *parsly.Token) bool {
	start := p.cursor.Pos
	matched := p.cursor.MatchOne(token)
	if matched.Code == token.Code {
		return true
	}
	p.cursor.Pos = start
	return false
}

func (p *parser) expect(token *parsly.Token) error {
	if p.match(token) {
		return nil
	}
	return p.errorf(token.Name)
}

func (p *parser) eof() bool {
	p.skipWhitespace()
	return p.cursor.Pos >= p.cursor.InputSize
}

func (p *parser) skipWhitespace() {
	start := p.cursor.Pos
	if matched := p.cursor.MatchOne(whitespaceToken); matched.Code != whitespaceToken.Code {
		p.cursor.Pos = start
	}
}

func (p *parser) pos() ast.Pos {
	p.skipWhitespace()
	line, column := coordinates(p.source, p.cursor.Pos)
	return ast.Pos{File: p.name, Line: line, Column: column}
}

func (p *parser) errorf(expected string) error {
	p.skipWhitespace()
	offset := p.cursor.Pos
	line, column := coordinates(p.source, offset)
	found := "EOF"
	if offset < p.cursor.InputSize {
		rest := p.source[offset:p.cursor.InputSize]
		end := bytes.IndexAny(rest, " \t\r\n")
		if end == -1 {
			end = len(rest)
		}
		if end > 16 {
			end = 16
		}
		if end == 0 {
			end = 1
		}
		found = "`" + string(rest[:end]) + "`"
	}
	return &Error{File: p.name, Line: line, Column: column, Expected: expected, Found: found, Context: sourceLine(p.source, offset)}
}

func coordinates(source []byte, offset int) (int, int) {
	if offset > len(source) {
		offset = len(source)
	}
	line := 1 + bytes.Count(source[:offset], []byte{'\n'})
	lineStart := bytes.LastIndexByte(source[:offset], '\n') + 1
	return line, offset - lineStart + 1
}

func sourceLine(source []byte, offset int) string {
	if offset > len(source) {
		offset = len(source)
	}
	start := bytes.LastIndexByte(source[:offset], '\n') + 1
	end := bytes.IndexByte(source[offset:], '\n')
	if end == -1 {
		end = len(source)
	} else {
		end += offset
	}
	return strings.TrimRight(string(source[start:end]), "\r")
}

func unquote(text string) string {
	body := text[1 : len(text)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	ret := strings.Builder{}
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' || i+1 >= len(body) {
			ret.WriteByte(body[i])
			continue
		}
		i++
		switch body[i] {
		case '"':
			ret.WriteByte('"')
		case '\\':
			ret.WriteByte('\\')
		case 'n':
			ret.WriteByte('\n')
		case 't':
			ret.WriteByte('\t')
		case 'r':
			ret.WriteByte('\r')
		default:
			ret.WriteByte('\\')
			ret.WriteByte(body[i])
		}
	}
	return ret.String()
}

func unraw(text string) string {
	hashes := 0
	for hashes+1 < len(text) && text[hashes+1] == '#' {
		hashes++
	}
	return text[hashes+2 : len(text)-hashes-1]
}
