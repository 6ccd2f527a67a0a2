package grid

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FilterKind selects the predicate family a column is filtered with
type FilterKind string

const (
	FilterNone     FilterKind = "none"
	FilterText     FilterKind = "text"
	FilterRange    FilterKind = "range"
	FilterDropdown FilterKind = "dropdown"
	FilterDate     FilterKind = "date"
	FilterImage    FilterKind = "image"
)

// IsValid reports whether k is a known kind
func (k FilterKind) IsValid() bool {
	switch k {
	case FilterNone, FilterText, FilterRange, FilterDropdown, FilterDate, FilterImage:
		return true
	}
	return false
}

// TextMode is the match mode of a text filter
type TextMode string

const (
	TextContains   TextMode = "contains"
	TextStartsWith TextMode = "startsWith"
	TextEquals     TextMode = "equals"
	TextNotEquals  TextMode = "notEquals"
	TextIsEmpty    TextMode = "isEmpty"
	TextIsNotEmpty TextMode = "isNotEmpty"
)

// IsValid reports whether m is a known mode
func (m TextMode) IsValid() bool {
	switch m {
	case TextContains, TextStartsWith, TextEquals, TextNotEquals, TextIsEmpty, TextIsNotEmpty:
		return true
	}
	return false
}

// ignoresValue reports whether the mode tests emptiness only
func (m TextMode) ignoresValue() bool {
	return m == TextIsEmpty || m == TextIsNotEmpty
}

// ImageBucket is a coarse bucket over a row's image count
type ImageBucket string

const (
	ImageAll        ImageBucket = "All"
	ImageNone       ImageBucket = "noImage"
	ImageAtLeastOne ImageBucket = "atLeastOne"
	ImageTwoOrMore  ImageBucket = "twoOrMore"
)

// DropdownAll is the dropdown option that places no constraint
const DropdownAll = "All"

// FilterValue is the closed set of filter values. The unexported marker
// method keeps implementations inside this package.
type FilterValue interface {
	Kind() FilterKind
	filterValue()
}

// TextFilter matches the trimmed, case-folded string form of a cell
type TextFilter struct {
	Value string   `json:"value"`
	Mode  TextMode `json:"mode"`
}

// RangeFilter bounds a numeric cell. Nil bounds are unconstrained.
type RangeFilter struct {
	Min *decimal.Decimal `json:"min,omitempty"`
	Max *decimal.Decimal `json:"max,omitempty"`
}

// DateFilter bounds a date cell. Nil bounds are unconstrained.
type DateFilter struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// DropdownFilter selects one option; DropdownAll means no constraint
type DropdownFilter struct {
	Selected string `json:"selected"`
}

// ImageFilter buckets the image count of a row
type ImageFilter struct {
	Bucket ImageBucket `json:"bucket"`
}

func (TextFilter) Kind() FilterKind     { return FilterText }
func (RangeFilter) Kind() FilterKind    { return FilterRange }
func (DateFilter) Kind() FilterKind     { return FilterDate }
func (DropdownFilter) Kind() FilterKind { return FilterDropdown }
func (ImageFilter) Kind() FilterKind    { return FilterImage }

func (TextFilter) filterValue()     {}
func (RangeFilter) filterValue()    {}
func (DateFilter) filterValue()     {}
func (DropdownFilter) filterValue() {}
func (ImageFilter) filterValue()    {}

// Filter values encode flat with their kind, in the field names RawFilter
// decodes, so a snapshot's filters can be sent back as they are.

func (f TextFilter) MarshalJSON() ([]byte, error) {
	type fields TextFilter
	return json.Marshal(struct {
		Kind FilterKind `json:"kind"`
		fields
	}{f.Kind(), fields(f)})
}

func (f RangeFilter) MarshalJSON() ([]byte, error) {
	type fields RangeFilter
	return json.Marshal(struct {
		Kind FilterKind `json:"kind"`
		fields
	}{f.Kind(), fields(f)})
}

func (f DateFilter) MarshalJSON() ([]byte, error) {
	type fields DateFilter
	return json.Marshal(struct {
		Kind FilterKind `json:"kind"`
		fields
	}{f.Kind(), fields(f)})
}

func (f DropdownFilter) MarshalJSON() ([]byte, error) {
	type fields DropdownFilter
	return json.Marshal(struct {
		Kind FilterKind `json:"kind"`
		fields
	}{f.Kind(), fields(f)})
}

func (f ImageFilter) MarshalJSON() ([]byte, error) {
	type fields ImageFilter
	return json.Marshal(struct {
		Kind FilterKind `json:"kind"`
		fields
	}{f.Kind(), fields(f)})
}

// IsDefault reports whether v places no constraint. It is the only
// place that decides emptiness; the store never keeps default values.
func IsDefault(v FilterValue) bool {
	switch f := v.(type) {
	case nil:
		return true
	case TextFilter:
		if f.Mode.ignoresValue() {
			return false
		}
		return strings.TrimSpace(f.Value) == ""
	case RangeFilter:
		return f.Min == nil && f.Max == nil
	case DateFilter:
		return f.From == nil && f.To == nil
	case DropdownFilter:
		return f.Selected == "" || f.Selected == DropdownAll
	case ImageFilter:
		return f.Bucket == "" || f.Bucket == ImageAll
	}
	return true
}

// RawFilter is the untyped wire form of a filter value
type RawFilter struct {
	Value    string `json:"value,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Min      string `json:"min,omitempty"`
	Max      string `json:"max,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Selected string `json:"selected,omitempty"`
	Bucket   string `json:"bucket,omitempty"`
}

// DecodeFilter builds the typed value for a column of the given kind.
// Empty fields decode to absent bounds.
func DecodeFilter(kind FilterKind, raw RawFilter) (FilterValue, error) {
	switch kind {
	case FilterText:
		mode := TextMode(raw.Mode)
		if mode == "" {
			mode = TextContains
		}
		if !mode.IsValid() {
			return nil, shared.NewDomainError("INVALID_FILTER", "Unknown text filter mode: "+raw.Mode)
		}
		return TextFilter{Value: raw.Value, Mode: mode}, nil
	case FilterRange:
		lo, err := parseBound(raw.Min)
		if err != nil {
			return nil, err
		}
		hi, err := parseBound(raw.Max)
		if err != nil {
			return nil, err
		}
		return RangeFilter{Min: lo, Max: hi}, nil
	case FilterDate:
		from, err := ParseDateBound(raw.From, false)
		if err != nil {
			return nil, err
		}
		to, err := ParseDateBound(raw.To, true)
		if err != nil {
			return nil, err
		}
		return DateFilter{From: from, To: to}, nil
	case FilterDropdown:
		return DropdownFilter{Selected: raw.Selected}, nil
	case FilterImage:
		b := ImageBucket(raw.Bucket)
		switch b {
		case "", ImageAll, ImageNone, ImageAtLeastOne, ImageTwoOrMore:
			return ImageFilter{Bucket: b}, nil
		}
		return nil, shared.NewDomainError("INVALID_FILTER", "Unknown image bucket: "+raw.Bucket)
	}
	return nil, shared.NewDomainError("INVALID_FILTER", "Column is not filterable")
}

func parseBound(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_FILTER", "Invalid number: "+s)
	}
	return &d, nil
}

const dateLayout = "2006-01-02"

// ParseDateBound parses an RFC3339 timestamp or a bare date. A bare date
// used as an upper bound covers the whole day.
func ParseDateBound(s string, upper bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_FILTER", "Invalid date: "+s)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
