package editor

import (
	"github.com/chazu/nodegraph/pkg/cull"
	"github.com/chazu/nodegraph/pkg/geom"
	"github.com/chazu/nodegraph/pkg/tessellate"
)

// Config tunes the interaction controller.
type Config struct {
	SocketTolerance     float64 // screen pixels; must exceed the drawn socket radius
	ConnectionTolerance float64 // screen pixels
	DragThreshold       float64 // screen pixels of motion before a drag moves anything
	MultiSelect         Modifiers

	GridSize   float64 // world units
	ShowGrid   bool
	SnapToGrid bool

	FramePadding    float64 // world units around framed nodes
	PasteOffset     geom.Vec
	DuplicateOffset geom.Vec

	AllowMultipleSelection bool
	RectangleSelection     bool
	ZoomEnabled            bool
	PanEnabled             bool
	RestrictHitsToVisible  bool

	Curve tessellate.CurveParams
	Cull  cull.Config
}

// DefaultConfig returns the stock interaction settings.
func DefaultConfig() Config {
	return Config{
		SocketTolerance:        16,
		ConnectionTolerance:    8,
		DragThreshold:          5,
		MultiSelect:            ModCtrl | ModShift,
		GridSize:               20,
		ShowGrid:               true,
		FramePadding:           100,
		PasteOffset:            geom.V(50, 50),
		DuplicateOffset:        geom.V(50, 50),
		AllowMultipleSelection: true,
		RectangleSelection:     true,
		ZoomEnabled:            true,
		PanEnabled:             true,
		Curve:                  tessellate.DefaultCurveParams(),
		Cull:                   cull.DefaultConfig(),
	}
}
