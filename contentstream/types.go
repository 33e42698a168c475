// Package contentstream interprets page content streams far enough to
// recover positioned text: which bytes were shown, with which font
// resource, at what effective size and device position.
package contentstream

import "math"

// Matrix is a PDF transformation matrix [a b c d e f], mapping
// (x, y) to (a*x + c*y + e, b*x + d*y + f).
type Matrix [6]float64

var Identity = Matrix{1, 0, 0, 1, 0, 0}

// Mul returns m × n (m applied first).
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

// Apply transforms a point.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// VScale is the scale factor applied to vertical distances, used to turn
// a nominal font size into a device-space size.
func (m Matrix) VScale() float64 {
	return math.Hypot(m[2], m[3])
}

func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

// Span is one run of shown text: the raw string bytes from consecutive
// show operators on the same line, with the font resource active at the
// time and the device-space position of the line start.
type Span struct {
	Font   string
	Size   float64
	X, Y   float64
	Chunks [][]byte
}

// Raw concatenates the span's chunks.
func (s *Span) Raw() []byte {
	if len(s.Chunks) == 1 {
		return s.Chunks[0]
	}
	var n int
	for _, c := range s.Chunks {
		n += len(c)
	}
	out := make([]byte, 0, n)
	for _, c := range s.Chunks {
		out = append(out, c...)
	}
	return out
}
