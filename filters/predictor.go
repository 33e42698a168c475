package filters

import (
	"errors"
	"fmt"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/ir/raw"
)

// applyPredictor reverses the predictor transform declared in DecodeParms.
// Predictor 1 (or absent) is the identity; 2 is TIFF horizontal differencing;
// 10..15 are the PNG filters applied row by row (PDF 7.4.4.4).
func applyPredictor(data []byte, params raw.Dictionary) ([]byte, error) {
	predictor := intParam(params, "Predictor", 1)
	if predictor <= 1 {
		return data, nil
	}
	colors := intParam(params, "Colors", 1)
	bpc := intParam(params, "BitsPerComponent", 8)
	columns := intParam(params, "Columns", 1)

	bpp := (colors*bpc + 7) / 8 // bytes per pixel
	rowLen := (colors * bpc * columns + 7) / 8

	if predictor == 2 {
		return applyTIFFPredictor(data, colors, bpc, columns)
	}
	if predictor < 10 || predictor > 15 {
		return nil, fmt.Errorf("unsupported predictor %d", predictor)
	}

	// PNG predictors prefix every row with a filter-type byte.
	if rowLen <= 0 || (len(data)%(rowLen+1)) != 0 {
		return nil, errors.New("predictor row size mismatch")
	}
	rows := len(data) / (rowLen + 1)
	out := make([]byte, 0, rows*rowLen)
	prior := make([]byte, rowLen)

	for r := 0; r < rows; r++ {
		rowStart := r * (rowLen + 1)
		ft := data[rowStart]
		row := append([]byte(nil), data[rowStart+1:rowStart+1+rowLen]...)
		switch ft {
		case 0: // None
		case 1: // Sub
			for i := bpp; i < rowLen; i++ {
				row[i] += row[i-bpp]
			}
		case 2: // Up
			for i := 0; i < rowLen; i++ {
				row[i] += prior[i]
			}
		case 3: // Average
			for i := 0; i < rowLen; i++ {
				var left byte
				if i >= bpp {
					left = row[i-bpp]
				}
				row[i] += byte((int(left) + int(prior[i])) / 2)
			}
		case 4: // Paeth
			for i := 0; i < rowLen; i++ {
				var left, upleft byte
				if i >= bpp {
					left = row[i-bpp]
					upleft = prior[i-bpp]
				}
				row[i] += paeth(left, prior[i], upleft)
			}
		default:
			return nil, fmt.Errorf("unknown png filter type %d", ft)
		}
		out = append(out, row...)
		copy(prior, row)
	}
	return out, nil
}

func applyTIFFPredictor(data []byte, colors, bpc, columns int) ([]byte, error) {
	if bpc != 8 {
		return nil, fmt.Errorf("tiff predictor with %d bits per component unsupported", bpc)
	}
	rowLen := colors * columns
	if rowLen <= 0 || len(data)%rowLen != 0 {
		return nil, errors.New("tiff predictor row size mismatch")
	}
	out := append([]byte(nil), data...)
	for row := 0; row < len(out); row += rowLen {
		for i := colors; i < rowLen; i++ {
			out[row+i] += out[row+i-colors]
		}
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
