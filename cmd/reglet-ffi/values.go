package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/infrastructure/memhost"
)

// parseArgs turns command line literals into pinned length-one vectors:
// integers, reals, TRUE/FALSE/NA and strings, in that order of preference.
// A quoted literal is always a string.
func parseArgs(rt *memhost.Runtime, literals []string) ([]entities.Handle, error) {
	handles := make([]entities.Handle, 0, len(literals))
	err := rt.TopLevelExec(func() {
		for _, lit := range literals {
			h := parseArg(rt, lit)
			rt.Pin(h)
			handles = append(handles, h)
		}
	})
	if err != nil {
		for _, h := range handles {
			rt.Unpin(h)
		}
		return nil, fmt.Errorf("cannot build arguments: %w", err)
	}
	return handles, nil
}

func parseArg(rt *memhost.Runtime, lit string) entities.Handle {
	if s, err := strconv.Unquote(lit); err == nil {
		return str(rt, s)
	}
	if i, err := strconv.ParseInt(lit, 10, 32); err == nil {
		h := rt.AllocVector(entities.TypeInteger, 1)
		rt.SetIntegerElt(h, 0, int32(i))
		return h
	}
	if f, err := strconv.ParseFloat(lit, 64); err == nil {
		h := rt.AllocVector(entities.TypeReal, 1)
		rt.SetRealElt(h, 0, f)
		return h
	}
	switch lit {
	case "TRUE", "FALSE", "NA":
		h := rt.AllocVector(entities.TypeLogical, 1)
		rt.SetLogicalElt(h, 0, map[string]entities.Logical{"TRUE": entities.True, "FALSE": entities.False, "NA": entities.NA}[lit])
		return h
	}
	return str(rt, lit)
}

func str(rt *memhost.Runtime, s string) entities.Handle {
	h := rt.AllocVector(entities.TypeString, 1)
	rt.Protect(h)
	rt.SetStringElt(h, 0, rt.MakeChar(s))
	rt.Unprotect(1)
	return h
}

// format renders a value the way the host's printer does.
func format(rt *memhost.Runtime, h entities.Handle) string {
	switch rt.TypeOf(h) {
	case entities.TypeNil:
		return "NULL"
	case entities.TypeExternalPtr:
		return "<pointer>"
	case entities.TypeList, entities.TypeExtension:
		n := rt.Length(h)
		if n == 0 {
			return "list()"
		}
		var b strings.Builder
		if rt.TypeOf(h) == entities.TypeExtension {
			fmt.Fprintf(&b, "<%s>\n", rt.ExtensionTypeName(h))
		}
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "[[%d]]\n%s\n", i+1, format(rt, rt.ListElt(h, i)))
		}
		return strings.TrimSuffix(b.String(), "\n")
	}

	n := rt.Length(h)
	elems := make([]string, n)
	for i := range elems {
		elems[i] = element(rt, h, i)
	}
	if n == 0 {
		return rt.TypeOf(h).String() + "(0)"
	}
	return "[1] " + strings.Join(elems, " ")
}

func element(rt *memhost.Runtime, h entities.Handle, i int) string {
	switch rt.TypeOf(h) {
	case entities.TypeInteger:
		if v := rt.IntegerElt(h, i); v != entities.NAInteger {
			return strconv.Itoa(int(v))
		}
	case entities.TypeReal:
		if v := rt.RealElt(h, i); !entities.IsNAReal(v) {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
	case entities.TypeLogical:
		switch rt.LogicalElt(h, i) {
		case entities.True:
			return "TRUE"
		case entities.False:
			return "FALSE"
		}
	case entities.TypeString:
		if c := rt.StringElt(h, i); !rt.IsNA(c) {
			return strconv.Quote(rt.CharString(c))
		}
	}
	return "NA"
}
