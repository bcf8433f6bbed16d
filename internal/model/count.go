package model

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// Count is a whole-number upstream field. It decodes from JSON integers,
// floats, numeric strings and null; fractions are dropped.
type Count int64

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return eris.Wrapf(err, "model: parse count %q", s)
	}
	*c = Count(d.IntPart())
	return nil
}
