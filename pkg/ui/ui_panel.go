package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30.0
	sectionHeight = 25.0
)

// UIWidget is an interface for all UI widgets
type UIWidget interface {
	Update()
	Draw(screen *ebiten.Image)
	GetHeight() float64
}

// SliderWrapper wraps Slider to implement UIWidget
type SliderWrapper struct {
	*Slider
}

func (s *SliderWrapper) GetHeight() float64 {
	return s.H + 25 // Slider height + label space
}

// CheckboxWrapper wraps Checkbox to implement UIWidget
type CheckboxWrapper struct {
	*Checkbox
}

func (c *CheckboxWrapper) GetHeight() float64 {
	return c.Size + 5 // Checkbox size + small margin
}

// panelRow is either a section header (widget == nil) or a labelled widget.
type panelRow struct {
	label  string
	widget UIWidget
	y      float64 // top of the row, scroll applied
}

// UIPanel stacks section headers and widgets in a scrollable column.
type UIPanel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	ScrollOffset  float64

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA
	TextColor   color.RGBA

	rows    []panelRow
	sliders []*Slider
}

// NewUIPanel creates a new UI panel
func NewUIPanel(x, y, width, height float64) *UIPanel {
	return &UIPanel{
		Title:       "Configuration",
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
		TextColor:   color.RGBA{R: 220, G: 220, B: 220, A: 255},
	}
}

// AddSection adds a section header
func (p *UIPanel) AddSection(title string) {
	p.rows = append(p.rows, panelRow{label: title})
	p.layout()
}

// AddSlider adds a slider. A non-empty name makes its value show up in Values.
func (p *UIPanel) AddSlider(label, name string, min, max, value float64) *Slider {
	s := NewSlider(p.X+10, 0, p.Width-20, label, min, max, value)
	s.Name = name
	p.sliders = append(p.sliders, s)
	p.add(label, &SliderWrapper{s})
	return s
}

// AddCheckbox adds a checkbox widget to the panel
func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, 0, label, value)
	p.add(label, &CheckboxWrapper{c})
	return c
}

// AddButton adds a full-width button.
func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, 0, p.Width-20, 20, label, onClick)
	p.add("", b)
	return b
}

func (p *UIPanel) add(label string, w UIWidget) {
	p.rows = append(p.rows, panelRow{label: label, widget: w})
	p.layout()
}

// layout places every row from the top of the panel, scroll applied.
func (p *UIPanel) layout() {
	y := p.Y + titleHeight - p.ScrollOffset
	for i := range p.rows {
		r := &p.rows[i]
		r.y = y
		switch w := r.widget.(type) {
		case nil:
			y += sectionHeight
			continue
		case *SliderWrapper:
			w.Y = y + 15
		case *CheckboxWrapper:
			w.Y = y + 15
		case *Button:
			w.Y = y
		}
		y += r.widget.GetHeight()
	}
}

// contentHeight is the height of everything in the panel, title included.
func (p *UIPanel) contentHeight() float64 {
	h := titleHeight
	for _, r := range p.rows {
		if r.widget == nil {
			h += sectionHeight
		} else {
			h += r.widget.GetHeight()
		}
	}
	return h
}

// Scroll moves the content by dy wheel steps, clamped to the content.
func (p *UIPanel) Scroll(dy float64) {
	p.ScrollOffset -= dy * 20
	maxScroll := max(p.contentHeight()-p.Height+40, 0)
	p.ScrollOffset = min(max(p.ScrollOffset, 0), maxScroll)
	p.layout()
}

// Contains reports whether (x, y) falls on the panel, so clicks there are
// not taken as clicks on the world behind it.
func (p *UIPanel) Contains(x, y float64) bool {
	return x >= p.X && x <= p.X+p.Width && y >= p.Y && y <= p.Y+p.Height
}

// visible reports whether the row at y lies inside the panel.
func (p *UIPanel) visible(y float64) bool {
	return y >= p.Y+titleHeight-5 && y <= p.Y+p.Height-15
}

// Update handles input for all widgets
func (p *UIPanel) Update() {
	if _, dy := ebiten.Wheel(); dy != 0 {
		mx, my := ebiten.CursorPosition()
		if p.Contains(float64(mx), float64(my)) {
			p.Scroll(dy)
		}
	}
	for _, r := range p.rows {
		if r.widget != nil && p.visible(r.y) {
			r.widget.Update()
		}
	}
}

// Draw renders the panel and all widgets
func (p *UIPanel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	for _, r := range p.rows {
		if !p.visible(r.y) {
			continue
		}
		if r.widget == nil {
			vector.FillRect(screen,
				float32(p.X+5), float32(r.y),
				float32(p.Width-10), 20,
				color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, r.label, int(p.X+10), int(r.y+2))
			continue
		}
		if r.label != "" {
			if _, ok := r.widget.(*CheckboxWrapper); ok {
				ebitenutil.DebugPrintAt(screen, r.label, int(p.X+34), int(r.y+15))
			} else {
				ebitenutil.DebugPrintAt(screen, r.label, int(p.X+10), int(r.y))
			}
		}
		r.widget.Draw(screen)
	}
}

// Values returns the current value of every named slider.
func (p *UIPanel) Values() map[string]float64 {
	out := make(map[string]float64, len(p.sliders))
	for _, s := range p.sliders {
		if s.Name != "" {
			out[s.Name] = s.Value
		}
	}
	return out
}
