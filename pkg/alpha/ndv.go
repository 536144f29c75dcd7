package alpha

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Nodata holds one nodata value per band.
type Nodata []float64

// Broadcast repeats a single value across bands.
func Broadcast(v float64, bands int) Nodata {
	ndv := make(Nodata, bands)
	for i := range ndv {
		ndv[i] = v
	}
	return ndv
}

// Zeros is the default fill convention used when no nodata value is known.
func Zeros(bands int) Nodata {
	return make(Nodata, bands)
}

// String renders the values the way the CLI accepts them, e.g. "[18, 51, 62]".
func (n Nodata) String() string {
	parts := make([]string, len(n))
	for i, v := range n {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

var ndvListPattern = regexp.MustCompile(`^\s*\[[0-9.,\s+eE-]+\]\s*$`)

// ParseSingle parses one nodata token.
func ParseSingle(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &ValueConversionError{Token: s}
	}
	return v, nil
}

// ParseNodata parses either a single token, broadcast to every band, or a
// bracketed comma separated list whose length must equal bands.
func ParseNodata(s string, bands int) (Nodata, error) {
	if !ndvListPattern.MatchString(s) {
		v, err := ParseSingle(s)
		if err != nil {
			return nil, err
		}
		return Broadcast(v, bands), nil
	}

	var raw []json.Number
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, &ValueConversionError{Token: s}
	}
	vals := make(Nodata, len(raw))
	for i, tok := range raw {
		v, err := ParseSingle(tok.String())
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	if len(vals) != bands {
		return nil, &BandCountMismatchError{Input: s, Parsed: vals, Bands: bands}
	}
	return vals, nil
}
