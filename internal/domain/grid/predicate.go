package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Matches reports whether cell satisfies v. It never panics; a default
// value matches every cell.
func Matches(cell any, v FilterValue) bool {
	if IsDefault(v) {
		return true
	}
	switch f := v.(type) {
	case TextFilter:
		return matchText(cell, f)
	case RangeFilter:
		return matchRange(cell, f)
	case DateFilter:
		return matchDate(cell, f)
	case DropdownFilter:
		return matchDropdown(cell, f)
	case ImageFilter:
		return matchImage(cell, f)
	}
	return true
}

func matchText(cell any, f TextFilter) bool {
	norm := fold
	if PolicyFor(f) == PolicyServer {
		norm = lower
	}
	got := norm(CellString(cell))
	want := norm(f.Value)

	switch f.Mode {
	case TextIsEmpty:
		return got == ""
	case TextIsNotEmpty:
		return got != ""
	case TextEquals:
		return got == want
	case TextNotEquals:
		return got != want
	case TextStartsWith:
		return strings.HasPrefix(got, want)
	default:
		return strings.Contains(got, want)
	}
}

func matchRange(cell any, f RangeFilter) bool {
	n, ok := CellDecimal(cell)
	if !ok {
		return false
	}
	if f.Min != nil && n.LessThan(*f.Min) {
		return false
	}
	if f.Max != nil && n.GreaterThan(*f.Max) {
		return false
	}
	return true
}

func matchDate(cell any, f DateFilter) bool {
	t, ok := CellTime(cell)
	if !ok {
		return false
	}
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	if f.To != nil && t.After(*f.To) {
		return false
	}
	return true
}

// matchDropdown maps the boolean options onto true/false cells and
// compares every other option with the cell's text.
func matchDropdown(cell any, f DropdownFilter) bool {
	got := fold(CellString(cell))
	want := fold(f.Selected)

	if got == "true" || got == "false" {
		switch want {
		case "blocked", "yes":
			return got == "true"
		case "unblocked", "no":
			return got == "false"
		}
	}
	return got == want
}

func matchImage(cell any, f ImageFilter) bool {
	d, ok := CellDecimal(cell)
	if !ok {
		return false
	}
	n := d.IntPart()
	switch f.Bucket {
	case ImageNone:
		return n == 0
	case ImageAtLeastOne:
		return n >= 1
	case ImageTwoOrMore:
		return n >= 2
	}
	return true
}

// fold trims and case-folds s. Casers carry state, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// lower trims and lowercases s the way SQL LOWER does. Modes the server also
// evaluates use it instead of fold, which would equate "ß" with "ss".
func lower(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// CellString renders a scalar cell as plain text. Nil renders empty.
func CellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case decimal.Decimal:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(cell)
}

// CellDecimal parses a numeric cell
func CellDecimal(cell any) (decimal.Decimal, bool) {
	switch v := cell.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, false
		}
		return *v, true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt32(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case float32:
		return CellDecimal(float64(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(v), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

// CellTime parses a date cell from a time value, RFC3339 or a bare date
func CellTime(cell any) (time.Time, bool) {
	switch v := cell.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true
		}
		if t, err := time.Parse(dateLayout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
