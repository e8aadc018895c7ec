package ufunc

import (
	"strings"
	"unicode"

	"github.com/numforge/ufuncgen/errors"
)

// ParseShapeSignature parses a generalized shape signature such as
// "(m,n),(n)->(m)" into per-argument symbol sequences for inputs and
// outputs. "()" denotes a scalar argument (empty symbol sequence).
func ParseShapeSignature(sig string) (ins, outs [][]string, err error) {
	lhs, rhs, found := strings.Cut(sig, "->")
	if !found {
		return nil, nil, errors.InvalidSignature(sig, "missing \"->\"")
	}

	ins, err = parseGroupList(sig, lhs)
	if err != nil {
		return nil, nil, err
	}
	outs, err = parseGroupList(sig, rhs)
	if err != nil {
		return nil, nil, err
	}
	if len(ins) == 0 {
		return nil, nil, errors.InvalidSignature(sig, "no input groups")
	}
	if len(outs) == 0 {
		return nil, nil, errors.InvalidSignature(sig, "no output groups")
	}

	// Every output symbol must be bound by some input group.
	bound := make(map[string]bool)
	for _, syms := range ins {
		for _, s := range syms {
			bound[s] = true
		}
	}
	for _, syms := range outs {
		for _, s := range syms {
			if !bound[s] {
				return nil, nil, errors.New(errors.PhaseSignature, errors.KindInvalidSignature).
					Symbol(s).
					Detail("output symbol not bound by any input in %q", sig).
					Build()
			}
		}
	}

	return ins, outs, nil
}

type sigScanner struct {
	sig string // full signature, for error reporting
	src string
	pos int
}

func parseGroupList(sig, src string) ([][]string, error) {
	sc := &sigScanner{sig: sig, src: src}
	var groups [][]string

	for {
		sc.skipSpace()
		if sc.pos >= len(sc.src) {
			break
		}
		group, err := sc.parseGroup()
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)

		sc.skipSpace()
		if sc.pos >= len(sc.src) {
			break
		}
		if sc.src[sc.pos] != ',' {
			return nil, errors.InvalidSignature(sig, "expected \",\" between groups")
		}
		sc.pos++
	}

	return groups, nil
}

func (sc *sigScanner) parseGroup() ([]string, error) {
	if sc.src[sc.pos] != '(' {
		return nil, errors.InvalidSignature(sc.sig, "expected \"(\"")
	}
	sc.pos++

	syms := []string{}
	for {
		sc.skipSpace()
		if sc.pos >= len(sc.src) {
			return nil, errors.InvalidSignature(sc.sig, "unterminated group")
		}
		if sc.src[sc.pos] == ')' {
			sc.pos++
			return syms, nil
		}
		if len(syms) > 0 {
			if sc.src[sc.pos] != ',' {
				return nil, errors.InvalidSignature(sc.sig, "expected \",\" between symbols")
			}
			sc.pos++
			sc.skipSpace()
		}
		sym := sc.scanSymbol()
		if sym == "" {
			return nil, errors.InvalidSignature(sc.sig, "expected dimension symbol")
		}
		syms = append(syms, sym)
	}
}

func (sc *sigScanner) scanSymbol() string {
	start := sc.pos
	for sc.pos < len(sc.src) {
		c := rune(sc.src[sc.pos])
		if unicode.IsLetter(c) || c == '_' || (sc.pos > start && unicode.IsDigit(c)) {
			sc.pos++
			continue
		}
		break
	}
	return sc.src[start:sc.pos]
}

func (sc *sigScanner) skipSpace() {
	for sc.pos < len(sc.src) && sc.src[sc.pos] == ' ' {
		sc.pos++
	}
}

// ResolveCoreDims is the caller-side validator for generalized calls:
// it binds each dimension symbol from the first input argument carrying
// it, checks every other argument sharing the symbol for an equal size,
// and returns the bound sizes in first-input-occurrence order - the
// layout of dims[1:] in the loop ABI. shapes holds one concrete core
// shape per argument, inputs then outputs; scalar arguments pass an
// empty shape.
func ResolveCoreDims(ins, outs [][]string, shapes [][]int64) ([]int64, error) {
	groups := append(append([][]string{}, ins...), outs...)
	if len(shapes) != len(groups) {
		return nil, errors.New(errors.PhaseSignature, errors.KindInvalidData).
			Detail("%d shapes for %d arguments", len(shapes), len(groups)).
			Build()
	}

	order := []string{}
	sizes := make(map[string]int64)
	for gi, syms := range groups {
		if len(shapes[gi]) != len(syms) {
			return nil, errors.New(errors.PhaseSignature, errors.KindInvalidData).
				Detail("argument %d has %d core dims, signature wants %d",
					gi, len(shapes[gi]), len(syms)).
				Build()
		}
		for di, s := range syms {
			size := shapes[gi][di]
			prev, seen := sizes[s]
			if !seen {
				sizes[s] = size
				if gi < len(ins) {
					order = append(order, s)
				}
				continue
			}
			if prev != size {
				return nil, errors.New(errors.PhaseSignature, errors.KindInvalidData).
					Symbol(s).
					Detail("size %d conflicts with bound size %d", size, prev).
					Build()
			}
		}
	}

	dims := make([]int64, len(order))
	for i, s := range order {
		dims[i] = sizes[s]
	}
	return dims, nil
}
