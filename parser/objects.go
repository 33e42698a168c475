package parser

import (
	"errors"
	"fmt"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/scanner"
)

// nextObject assembles one raw object from the token stream. Dictionaries
// and arrays recurse; indirect references arrive pre-combined.
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
		return nil, errors.New("unexpected token " + tok.Str)
	}
}
