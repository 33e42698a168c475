package xref

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/recovery"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/scanner"
)

// The xref layer needs just enough object parsing to read trailers and
// xref stream dictionaries. Full document parsing lives elsewhere.

func parseDictAt(data []byte, offset int64, strat recovery.Strategy) (raw.Dictionary, error) {
	sc := scanner.New(bytes.NewReader(data), scanner.Config{Recovery: strat})
	if err := sc.SeekTo(offset); err != nil {
		return nil, err
	}
	obj, err := nextObject(sc)
	if err != nil {
		return nil, err
	}
	dict, ok := obj.(raw.Dictionary)
	if !ok {
		return nil, fmt.Errorf("expected dictionary, got %s", obj.Type())
	}
	return dict, nil
}

// parseIndirectAt reads "N G obj ... endobj" starting at offset.
func parseIndirectAt(data []byte, offset int64, strat recovery.Strategy) (raw.Object, error) {
	sc := scanner.New(bytes.NewReader(data), scanner.Config{Recovery: strat})
	if err := sc.SeekTo(offset); err != nil {
		return nil, err
	}
	tok, err := sc.Next()
	if err != nil {
		return nil, err
	}
	if tok.Type != scanner.TokenNumber {
		return nil, fmt.Errorf("expected object number at %d", offset)
	}
	tok, err = sc.Next()
	if err != nil {
		return nil, err
	}
	if tok.Type != scanner.TokenNumber {
		return nil, errors.New("expected generation number")
	}
	tok, err = sc.Next()
	if err != nil {
		return nil, err
	}
	if tok.Type != scanner.TokenKeyword || tok.Str != "obj" {
		return nil, fmt.Errorf("expected obj keyword, got %q", tok.Str)
	}

	obj, err := nextObject(sc)
	if err != nil {
		return nil, err
	}
	// A stream keyword may follow the dictionary.
	if dict, ok := obj.(*raw.DictObj); ok {
		if length := dictInt64(dict, "Length"); length > 0 {
			sc.SetStreamLength(length)
		}
		tok, err := sc.Next()
		if err == nil && tok.Type == scanner.TokenStream {
			return raw.NewStream(dict, tok.Bytes), nil
		}
	}
	return obj, nil
}

// nextObject assembles one object from the token sequence. Dictionaries
// and arrays recurse; references arrive pre-combined from the scanner.
func nextObject(sc scanner.Scanner) (raw.Object, error) {
	tok, err := sc.Next()
	if err != nil {
		return nil, err
	}
	return objectFromToken(sc, tok)
}

func objectFromToken(sc scanner.Scanner, tok scanner.Token) (raw.Object, error) {
	switch tok.Type {
	case scanner.TokenDict:
		if tok.Str != "<<" {
			return nil, errors.New("unexpected dictionary close")
		}
		dict := raw.Dict()
		for {
			keyTok, err := sc.Next()
			if err != nil {
				return nil, err
			}
			if keyTok.Type == scanner.TokenKeyword && keyTok.Str == ">>" {
				return dict, nil
			}
			if keyTok.Type != scanner.TokenName {
				return nil, fmt.Errorf("dictionary key must be a name, got %q", keyTok.Str)
			}
			val, err := nextObject(sc)
			if err != nil {
				return nil, err
			}
			dict.Set(raw.NameObj{Val: keyTok.Str}, val)
		}
	case scanner.TokenArray:
		if tok.Str != "[" {
			return nil, errors.New("unexpected array close")
		}
		arr := raw.NewArray()
		for {
			itemTok, err := sc.Next()
			if err != nil {
				return nil, err
			}
			if itemTok.Type == scanner.TokenKeyword && itemTok.Str == "]" {
				return arr, nil
			}
			item, err := objectFromToken(sc, itemTok)
			if err != nil {
				return nil, err
			}
			arr.Append(item)
		}
	case scanner.TokenName:
		return raw.NameObj{Val: tok.Str}, nil
	case scanner.TokenNumber:
		if tok.IsInt {
			return raw.NumberInt(tok.Int), nil
		}
		return raw.NumberFloat(tok.Float), nil
	case scanner.TokenString:
		return raw.Str(tok.Bytes), nil
	case scanner.TokenBoolean:
		return raw.Bool(tok.Bool), nil
	case scanner.TokenNull:
		return raw.NullObj{}, nil
	case scanner.TokenRef:
		return raw.Ref(tok.Num, tok.Gen), nil
	default:
		return nil, fmt.Errorf("unexpected token %q in object", tok.Str)
	}
}
