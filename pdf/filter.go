package pdf

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"encoding/hex"
	"fmt"
	"io"
)

// maxDecoded bounds the size of one decoded stream.
const maxDecoded = 64 << 20

// decode applies the stream's filter chain. Only the filters used by
// cross-reference and object streams are supported; page content and image
// data are never decoded here.
func decode(d Dict, raw []byte) ([]byte, error) {
	filters, ok := d.Array("Filter")
	if !ok {
		return raw, nil
	}
	parms, _ := d.Array("DecodeParms")

	data := raw
	for i, f := range filters {
		if f.Kind != Name {
			continue
		}
		var p Dict
		if i < len(parms) && parms[i].Kind == Dictionary {
			p = parms[i].Dict
		}
		var err error
		switch f.Name {
		case "FlateDecode", "Fl":
			data, err = inflate(data, p)
		case "ASCIIHexDecode", "AHx":
			data, err = unhexStream(data)
		case "ASCII85Decode", "A85":
			data, err = unbase85(data)
		default:
			err = fmt.Errorf("unsupported filter %s", f.Name)
		}
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDecoded+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDecoded {
		return nil, fmt.Errorf("decoded stream larger than %d bytes", maxDecoded)
	}
	return data, nil
}

func inflate(data []byte, p Dict) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	defer zr.Close()
	out, err := readLimited(zr)
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	if p == nil {
		return out, nil
	}
	switch pred, _ := p.Int("Predictor"); {
	case pred >= 10:
		return unpredictPNG(out, p)
	case pred == 2:
		return unpredictTIFF(out, p)
	}
	return out, nil
}

// rowGeometry returns bytes per row and bytes per pixel from decode parameters.
func rowGeometry(p Dict) (row, bpp int) {
	colors, bits, cols := int64(1), int64(8), int64(1)
	if v, ok := p.Int("Colors"); ok && v > 0 {
		colors = v
	}
	if v, ok := p.Int("BitsPerComponent"); ok && v > 0 {
		bits = v
	}
	if v, ok := p.Int("Columns"); ok && v > 0 {
		cols = v
	}
	row = int((cols*colors*bits + 7) / 8)
	bpp = max(int((colors*bits+7)/8), 1)
	return row, bpp
}

func unpredictPNG(data []byte, p Dict) ([]byte, error) {
	row, bpp := rowGeometry(p)
	stride := row + 1
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("png predictor: %d bytes is not a multiple of row size %d", len(data), stride)
	}
	out := make([]byte, 0, len(data)/stride*row)
	prev := make([]byte, row)
	cur := make([]byte, row)
	for off := 0; off < len(data); off += stride {
		tag, src := data[off], data[off+1:off+stride]
		for i := range cur {
			var a, c byte
			if i >= bpp {
				a, c = cur[i-bpp], prev[i-bpp]
			}
			b := prev[i]
			switch tag {
			case 1:
				cur[i] = src[i] + a
			case 2:
				cur[i] = src[i] + b
			case 3:
				cur[i] = src[i] + byte((int(a)+int(b))/2)
			case 4:
				cur[i] = src[i] + paeth(a, b, c)
			default:
				cur[i] = src[i]
			}
		}
		out = append(out, cur...)
		prev, cur = cur, prev
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func unpredictTIFF(data []byte, p Dict) ([]byte, error) {
	row, bpp := rowGeometry(p)
	out := bytes.Clone(data)
	for start := 0; start < len(out); start += row {
		end := min(start+row, len(out))
		for i := start + bpp; i < end; i++ {
			out[i] += out[i-bpp]
		}
	}
	return out, nil
}

func unhexStream(data []byte) ([]byte, error) {
	clean := make([]byte, 0, len(data))
	for _, c := range data {
		if c == '>' {
			break
		}
		if !isSpace(c) {
			clean = append(clean, c)
		}
	}
	if len(clean)%2 == 1 {
		clean = append(clean, '0')
	}
	out := make([]byte, len(clean)/2)
	if _, err := hex.Decode(out, clean); err != nil {
		return nil, fmt.Errorf("asciihex: %w", err)
	}
	return out, nil
}

func unbase85(data []byte) ([]byte, error) {
	if i := bytes.Index(data, []byte("~>")); i >= 0 {
		data = data[:i]
	}
	out, err := readLimited(ascii85.NewDecoder(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("ascii85: %w", err)
	}
	return out, nil
}
