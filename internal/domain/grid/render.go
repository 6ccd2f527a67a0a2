package grid

// Renderer names how a cell is turned into display text
type Renderer string

const (
	RenderText     Renderer = "text"
	RenderEditable Renderer = "editable"
	RenderMoney    Renderer = "money"
	RenderBool     Renderer = "checkbox"
	RenderYesNo    Renderer = "yesno"
	RenderDate     Renderer = "date"
	RenderImage    Renderer = "image"
	RenderSelect   Renderer = "select"
)

const displayDateLayout = "01/02/2006"

// Render returns the display text of a cell
func Render(r Renderer, cell any) string {
	switch r {
	case RenderEditable:
		if s := CellString(cell); s != "" {
			return s
		}
		return "-"
	case RenderMoney:
		d, ok := CellDecimal(cell)
		if !ok {
			return "-"
		}
		return "$" + d.StringFixed(2)
	case RenderBool:
		if truthy(cell) {
			return "☑"
		}
		return "☐"
	case RenderYesNo:
		if truthy(cell) {
			return "Yes"
		}
		return "No"
	case RenderDate:
		t, ok := CellTime(cell)
		if !ok {
			return "Invalid Date"
		}
		return t.Format(displayDateLayout)
	case RenderImage:
		if s := CellString(cell); s != "" {
			return s
		}
		return "No Image"
	case RenderSelect:
		return ""
	}
	return CellString(cell)
}

func truthy(cell any) bool {
	switch v := cell.(type) {
	case bool:
		return v
	case *bool:
		return v != nil && *v
	case string:
		return fold(v) == "true"
	}
	return false
}
