package contentstream

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/recovery"
	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/scanner"
)

type Config struct {
	MaxOperands int
	MaxSpans    int
	Recovery    recovery.Strategy
}

// Interpreter walks a content stream and collects text spans. Only the
// operators that affect text placement are modeled; painting operators
// are consumed and ignored.
type Interpreter struct {
	cfg Config
}

func NewInterpreter(cfg Config) *Interpreter {
	if cfg.MaxOperands <= 0 {
		cfg.MaxOperands = 64
	}
	if cfg.MaxSpans <= 0 {
		cfg.MaxSpans = 1 << 16
	}
	return &Interpreter{cfg: cfg}
}

type gstate struct {
	ctm      Matrix
	fontName string
	fontSize float64
}

type textState struct {
	tm      Matrix // text matrix
	tlm     Matrix // text line matrix
	leading float64
	inText  bool
}

// Spans interprets content and returns the text spans in stream order.
func (it *Interpreter) Spans(ctx context.Context, content []byte) ([]Span, error) {
	sc := scanner.New(bytes.NewReader(content), scanner.Config{Recovery: it.cfg.Recovery})

	gs := gstate{ctm: Identity}
	var stack []gstate
	var ts textState
	var operands []scanner.Token
	var spans []Span
	var cur *Span

	flush := func() { cur = nil }

	emit := func(raw []byte) {
		if len(spans) >= it.cfg.MaxSpans {
			return
		}
		if cur == nil {
			trm := ts.tm.Mul(gs.ctm)
			x, y := trm.Apply(0, 0)
			spans = append(spans, Span{
				Font: gs.fontName,
				Size: gs.fontSize * trm.VScale(),
				X:    x,
				Y:    y,
			})
			cur = &spans[len(spans)-1]
		}
		cur.Chunks = append(cur.Chunks, raw)
	}

	nextLine := func(tx, ty float64) {
		ts.tlm = Translate(tx, ty).Mul(ts.tlm)
		ts.tm = ts.tlm
		flush()
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := sc.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if it.skip(err) {
				continue
			}
			return nil, err
		}
		if tok.Type != scanner.TokenKeyword {
			if len(operands) < it.cfg.MaxOperands {
				operands = append(operands, tok)
			}
			continue
		}

		op := tok.Str
		// Array and dict closers are delimiters, not operators; the
		// elements already sit in the operand list.
		if op == "]" || op == ">>" {
			continue
		}
		switch op {
		case "q":
			stack = append(stack, gs)
		case "Q":
			if n := len(stack); n > 0 {
				gs = stack[n-1]
				stack = stack[:n-1]
				flush()
			}
		case "cm":
			if m, ok := matrixOperands(operands); ok {
				gs.ctm = m.Mul(gs.ctm)
				flush()
			}
		case "BT":
			ts = textState{tm: Identity, tlm: Identity, leading: ts.leading, inText: true}
			flush()
		case "ET":
			ts.inText = false
			flush()
		case "Tf":
			if len(operands) >= 2 {
				if operands[0].Type == scanner.TokenName {
					gs.fontName = operands[0].Str
				}
				gs.fontSize = numValue(operands[1])
				flush()
			}
		case "TL":
			if len(operands) >= 1 {
				ts.leading = numValue(operands[0])
			}
		case "Td":
			if len(operands) >= 2 {
				nextLine(numValue(operands[0]), numValue(operands[1]))
			}
		case "TD":
			if len(operands) >= 2 {
				ts.leading = -numValue(operands[1])
				nextLine(numValue(operands[0]), numValue(operands[1]))
			}
		case "Tm":
			if m, ok := matrixOperands(operands); ok {
				ts.tm = m
				ts.tlm = m
				flush()
			}
		case "T*":
			nextLine(0, -ts.leading)
		case "Tj":
			if len(operands) >= 1 && operands[len(operands)-1].Type == scanner.TokenString {
				emit(operands[len(operands)-1].Bytes)
			}
		case "'":
			nextLine(0, -ts.leading)
			if len(operands) >= 1 && operands[len(operands)-1].Type == scanner.TokenString {
				emit(operands[len(operands)-1].Bytes)
			}
		case "\"":
			// aw ac string: spacing operands are not modeled.
			nextLine(0, -ts.leading)
			if len(operands) >= 1 && operands[len(operands)-1].Type == scanner.TokenString {
				emit(operands[len(operands)-1].Bytes)
			}
		case "TJ":
			// The array arrives as individual tokens: '[', elements, ']'.
			for _, o := range operands {
				if o.Type == scanner.TokenString {
					emit(o.Bytes)
				}
			}
		}
		operands = operands[:0]
	}
	return spans, nil
}

func (it *Interpreter) skip(err error) bool {
	if it.cfg.Recovery == nil {
		return false
	}
	return it.cfg.Recovery.OnError(err, recovery.Location{Component: "contentstream"}) != recovery.ActionFail
}

func matrixOperands(operands []scanner.Token) (Matrix, bool) {
	var m Matrix
	if len(operands) < 6 {
		return m, false
	}
	base := len(operands) - 6
	for i := 0; i < 6; i++ {
		tok := operands[base+i]
		if tok.Type != scanner.TokenNumber {
			return m, false
		}
		m[i] = numValue(tok)
	}
	return m, true
}

func numValue(tok scanner.Token) float64 {
	if tok.IsInt {
		return float64(tok.Int)
	}
	return tok.Float
}
