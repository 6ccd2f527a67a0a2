package grid

import "math"

// DefaultDragThreshold is the pointer travel that turns a press into a drag
const DefaultDragThreshold = 5.0

// Region is the part of the header a pointer event landed on
type Region string

const (
	RegionHeader       Region = "header"
	RegionFilter       Region = "filter"
	RegionButton       Region = "button"
	RegionResizeHandle Region = "resize"
	RegionOutside      Region = "outside"
)

// PointerType is the kind of pointer event
type PointerType string

const (
	PointerDown   PointerType = "down"
	PointerMove   PointerType = "move"
	PointerUp     PointerType = "up"
	PointerCancel PointerType = "cancel"
)

// PointerEvent is one pointer event over the header row. Column is the
// column under the pointer, empty when outside every column.
type PointerEvent struct {
	Type   PointerType `json:"type"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Column string      `json:"column"`
	Region Region      `json:"region"`
}

// GesturePhase is the controller state
type GesturePhase string

const (
	PhaseIdle     GesturePhase = "idle"
	PhasePending  GesturePhase = "pending"
	PhaseDragging GesturePhase = "dragging"
	PhaseResizing GesturePhase = "resizing"
)

// Outcome is what a pointer event did to the layout
type Outcome string

const (
	OutcomeNone           Outcome = "none"
	OutcomeMoved          Outcome = "moved"
	OutcomeResized        Outcome = "resized"
	OutcomeInvalidReorder Outcome = "invalid_reorder"
)

// ColumnLayout is the part of the store the controller commits to
type ColumnLayout interface {
	MoveColumn(from, to string) bool
	SetColumnWidth(id string, width int) bool
	ColumnWidth(id string) (int, bool)
}

// GestureState is a read-only view of the controller
type GestureState struct {
	Phase     GesturePhase `json:"phase"`
	Source    string       `json:"source,omitempty"`
	Over      string       `json:"over,omitempty"`
	LiveWidth int          `json:"live_width,omitempty"`
}

// Controller turns pointer events into column moves and resizes
type Controller struct {
	threshold float64

	phase      GesturePhase
	source     string
	over       string
	startX     float64
	startY     float64
	startWidth int
	liveWidth  int
}

// NewController creates an idle controller. A non-positive threshold
// uses DefaultDragThreshold.
func NewController(threshold float64) *Controller {
	if threshold <= 0 {
		threshold = DefaultDragThreshold
	}
	return &Controller{threshold: threshold, phase: PhaseIdle}
}

// State returns the current gesture state
func (c *Controller) State() GestureState {
	return GestureState{
		Phase:     c.phase,
		Source:    c.source,
		Over:      c.over,
		LiveWidth: c.liveWidth,
	}
}

// Handle feeds one event through the state machine
func (c *Controller) Handle(ev PointerEvent, layout ColumnLayout) Outcome {
	switch ev.Type {
	case PointerDown:
		return c.down(ev, layout)
	case PointerMove:
		return c.move(ev, layout)
	case PointerUp:
		return c.up(ev, layout)
	case PointerCancel:
		return c.cancel(layout)
	}
	return OutcomeNone
}

func (c *Controller) down(ev PointerEvent, layout ColumnLayout) Outcome {
	c.reset()
	if ev.Column == "" {
		return OutcomeNone
	}
	switch ev.Region {
	case RegionHeader:
		c.phase = PhasePending
	case RegionResizeHandle:
		w, ok := layout.ColumnWidth(ev.Column)
		if !ok {
			return OutcomeNone
		}
		c.phase = PhaseResizing
		c.startWidth = w
		c.liveWidth = w
	default:
		// filter inputs and buttons keep their own pointer handling
		return OutcomeNone
	}
	c.source = ev.Column
	c.startX, c.startY = ev.X, ev.Y
	return OutcomeNone
}

func (c *Controller) move(ev PointerEvent, layout ColumnLayout) Outcome {
	switch c.phase {
	case PhasePending:
		if math.Hypot(ev.X-c.startX, ev.Y-c.startY) >= c.threshold {
			c.phase = PhaseDragging
			c.over = ev.Column
		}
	case PhaseDragging:
		c.over = ev.Column
	case PhaseResizing:
		c.liveWidth = ClampWidth(c.startWidth + int(math.Round(ev.X-c.startX)))
		if layout.SetColumnWidth(c.source, c.liveWidth) {
			return OutcomeResized
		}
	}
	return OutcomeNone
}

func (c *Controller) up(ev PointerEvent, layout ColumnLayout) Outcome {
	defer c.reset()

	switch c.phase {
	case PhaseDragging:
		if ev.Column == "" || ev.Column == c.source {
			return OutcomeNone
		}
		if !layout.MoveColumn(c.source, ev.Column) {
			return OutcomeInvalidReorder
		}
		return OutcomeMoved
	case PhaseResizing:
		w := ClampWidth(c.startWidth + int(math.Round(ev.X-c.startX)))
		if layout.SetColumnWidth(c.source, w) {
			return OutcomeResized
		}
	}
	return OutcomeNone
}

// cancel abandons the gesture; an interrupted resize restores its start width
func (c *Controller) cancel(layout ColumnLayout) Outcome {
	defer c.reset()
	if c.phase == PhaseResizing && layout.SetColumnWidth(c.source, c.startWidth) {
		return OutcomeResized
	}
	return OutcomeNone
}

func (c *Controller) reset() {
	*c = Controller{threshold: c.threshold, phase: PhaseIdle}
}
