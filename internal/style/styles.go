package style

type SymbolType int

const (
	SymbolTriangle SymbolType = iota
	SymbolSquare
	SymbolCircle
)

type LabelType int

const (
	LabelDefault LabelType = iota
	LabelPlate
	LabelContour
)

type FillStyle struct {
	FillColor    ColorRGBA
	OutlineColor ColorRGBA
	OutlineWidth float64
}

type LineStyle struct {
	LineWidth    float64
	LineColor    ColorRGBA
	OutlineWidth float64
	OutlineColor ColorRGBA
}

type SymbolStyle struct {
	Type         SymbolType
	Size         float64
	OffsetHeight float64
}

type LabelStyle struct {
	Type             LabelType
	FontFamily       string
	FontSize         float64
	FontColor        ColorRGBA
	FontOutlineSize  float64
	FontOutlineColor ColorRGBA

	// contour labels
	ContourPadding float64

	// default and plate labels
	OffsetHeight float64

	// plate labels
	PlatePadding      float64
	PlateColor        ColorRGBA
	PlateOutlineWidth float64
	PlateOutlineColor ColorRGBA
}

func NewFillStyle() *FillStyle {
	return &FillStyle{FillColor: DefaultColor(), OutlineColor: DefaultColor()}
}

// Builds a line style. Widths below one are raised to one.
func NewLineStyle(width float64) *LineStyle {
	s := &LineStyle{LineColor: DefaultColor(), OutlineColor: DefaultColor()}
	s.SetLineWidth(width)
	return s
}

func (s *LineStyle) SetLineWidth(width float64) {
	if width < 1 {
		width = 1
	}
	s.LineWidth = width
}

func NewSymbolStyle() *SymbolStyle {
	return &SymbolStyle{Type: SymbolSquare}
}

func NewLabelStyle() *LabelStyle {
	return &LabelStyle{
		FontSize:          10,
		FontColor:         DefaultColor(),
		FontOutlineSize:   10,
		FontOutlineColor:  DefaultColor(),
		ContourPadding:    0.5,
		OffsetHeight:      5,
		PlatePadding:      1,
		PlateColor:        DefaultColor(),
		PlateOutlineWidth: 0.2,
		PlateOutlineColor: DefaultColor(),
	}
}

// Styles bound to a node type. A node type is rendered only when Fill is set.
type NodeStyle struct {
	Fill   *FillStyle
	Symbol *SymbolStyle
	Label  *LabelStyle
}

// Styles bound to a way type. A way type is rendered only when Line is set.
type WayStyle struct {
	Layer int
	Line  *LineStyle
	Label *LabelStyle
}

// Styles bound to an area type. An area type is rendered only when Fill is set.
type AreaStyle struct {
	Layer int
	Fill  *FillStyle
	Label *LabelStyle
}
