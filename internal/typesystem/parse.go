package typesystem

import (
	"fmt"
	"strings"
	"unicode"
)

// Parse reads a type written in the surface notation used by fixtures and
// diagnostics:
//
//	Int  Int?  List<String>  (Int, Long) -> Bool  String.(Int) -> Char  ((Int) -> Unit)?
//
// Names listed in typeParams are read as type variables.
func Parse(src string, typeParams []string) (Type, error) {
	p := &typeParser{src: src, typeParams: typeParams}
	p.next()
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.tok != "" {
		return nil, fmt.Errorf("parse type %q: unexpected %q", src, p.tok)
	}
	return t, nil
}

// MustParse is like Parse but panics on malformed input. Intended for tests
// and static tables.
func MustParse(src string, typeParams ...string) Type {
	t, err := Parse(src, typeParams)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	src        string
	pos        int
	tok        string
	typeParams []string
}

func (p *typeParser) next() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		p.tok = ""
		return
	}
	c := rune(p.src[p.pos])
	switch {
	case strings.HasPrefix(p.src[p.pos:], "->"):
		p.tok = "->"
		p.pos += 2
	case strings.ContainsRune("<>,()?.", c):
		p.tok = string(c)
		p.pos++
	case unicode.IsLetter(c) || c == '_':
		start := p.pos
		for p.pos < len(p.src) {
			r := rune(p.src[p.pos])
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				p.pos++
				continue
			}
			// dotted names (pkg.Type) but not a receiver separator "T.("
			if r == '.' && p.pos+1 < len(p.src) && unicode.IsLetter(rune(p.src[p.pos+1])) {
				p.pos++
				continue
			}
			break
		}
		p.tok = p.src[start:p.pos]
	default:
		p.tok = string(c)
		p.pos++
	}
}

func (p *typeParser) expect(tok string) error {
	if p.tok != tok {
		return fmt.Errorf("parse type %q: expected %q, got %q", p.src, tok, p.tok)
	}
	p.next()
	return nil
}

func (p *typeParser) parseType() (Type, error) {
	if p.tok == "(" {
		return p.parseParenthesized(nil)
	}
	base, err := p.parseNamed()
	if err != nil {
		return nil, err
	}
	if p.tok == "." {
		p.next()
		if p.tok != "(" {
			return nil, fmt.Errorf("parse type %q: expected function type after receiver", p.src)
		}
		return p.parseParenthesized(base)
	}
	return base, nil
}

func (p *typeParser) parseParenthesized(receiver Type) (Type, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var items []Type
	for p.tok != ")" {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		items = append(items, t)
		if p.tok == "," {
			p.next()
			continue
		}
		if p.tok != ")" {
			return nil, fmt.Errorf("parse type %q: expected ',' or ')', got %q", p.src, p.tok)
		}
	}
	p.next()

	if p.tok == "->" {
		p.next()
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return TFunc{Receiver: receiver, Params: items, ReturnType: ret}, nil
	}
	if receiver == nil && len(items) == 1 {
		t := items[0]
		if p.tok == "?" {
			p.next()
			t = MakeNullable(t)
		}
		return t, nil
	}
	return nil, fmt.Errorf("parse type %q: expected '->' after parameter list", p.src)
}

func (p *typeParser) parseNamed() (Type, error) {
	name := p.tok
	if name == "" || !(unicode.IsLetter(rune(name[0])) || name[0] == '_') {
		return nil, fmt.Errorf("parse type %q: expected type name, got %q", p.src, name)
	}
	p.next()

	var t Type
	if p.isTypeParam(name) {
		t = TVar{Name: name}
	} else {
		con := TCon{Name: name}
		if p.tok == "<" {
			p.next()
			for {
				arg, err := p.parseType()
				if err != nil {
					return nil, err
				}
				con.Args = append(con.Args, arg)
				if p.tok == "," {
					p.next()
					continue
				}
				break
			}
			if err := p.expect(">"); err != nil {
				return nil, err
			}
		}
		t = con
	}
	if p.tok == "?" {
		p.next()
		t = MakeNullable(t)
	}
	return t, nil
}

func (p *typeParser) isTypeParam(name string) bool {
	for _, tp := range p.typeParams {
		if tp == name {
			return true
		}
	}
	return false
}
