// Package display renders the alert screen on a 1-bit OLED panel.
//
// Screen keeps an image1bit frame buffer and implements the tinygo
// drivers.Displayer interface over it, so tinyfont can draw text straight
// into the buffer. Present pushes the buffer to the panel.
package display

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Layout of the alert screen.
const (
	BorderThickness = 1
	TextOffset      = 4
	TitleY          = 4
	PositionY       = 24

	// ascent is the distance from a text line's top to the font baseline.
	ascent = 8
)

var white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Panel is the physical display.
type Panel interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

var _ Panel = (*ssd1306.Dev)(nil)

var _ drivers.Displayer = (*Screen)(nil)

// Screen is a buffered 1-bit display.
// The drawing primitives are not synchronised; RenderMessage and ClearScreen are.
type Screen struct {
	mu    sync.Mutex
	panel Panel
	buf   *image1bit.VerticalLSB
	font  tinyfont.Fonter
}

// NewSSD1306 opens a 128x64 SSD1306 on the bus.
func NewSSD1306(bus i2c.Bus) (*Screen, error) {
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("open ssd1306: %w", err)
	}
	return New(dev), nil
}

// New creates a Screen sized to the panel.
func New(p Panel) *Screen {
	return &Screen{
		panel: p,
		buf:   image1bit.NewVerticalLSB(p.Bounds()),
		font:  &proggy.TinySZ8pt7b,
	}
}

// Size returns the buffer dimensions.
func (s *Screen) Size() (x, y int16) {
	b := s.buf.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

// SetPixel lights the pixel for any non-black colour.
func (s *Screen) SetPixel(x, y int16, c color.RGBA) {
	if !image.Pt(int(x), int(y)).In(s.buf.Bounds()) {
		return
	}
	s.buf.SetBit(int(x), int(y), image1bit.Bit(c.R|c.G|c.B != 0))
}

// Display pushes the buffer to the panel.
func (s *Screen) Display() error {
	return s.panel.Draw(s.buf.Bounds(), s.buf, image.Point{})
}

// Present is an alias for Display.
func (s *Screen) Present() error {
	return s.Display()
}

// Clear blanks the buffer.
func (s *Screen) Clear() {
	for i := range s.buf.Pix {
		s.buf.Pix[i] = 0
	}
}

// DrawBorder draws a rectangle of the given thickness around the edge.
func (s *Screen) DrawBorder(thickness int) {
	w, h := s.Size()
	for t := int16(0); t < int16(thickness); t++ {
		for x := int16(0); x < w; x++ {
			s.SetPixel(x, t, white)
			s.SetPixel(x, h-1-t, white)
		}
		for y := int16(0); y < h; y++ {
			s.SetPixel(t, y, white)
			s.SetPixel(w-1-t, y, white)
		}
	}
}

// DrawText writes str with its top-left corner at (x, y).
func (s *Screen) DrawText(x, y int16, str string) {
	tinyfont.WriteLine(s, s.font, x, y+ascent, str, white)
}

// RenderMessage shows title and text inside a border.
func (s *Screen) RenderMessage(title, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Clear()
	s.DrawBorder(BorderThickness)
	s.DrawText(TextOffset, TitleY, title)
	s.DrawText(TextOffset, PositionY, text)
	return s.Present()
}

// ClearScreen shows an empty bordered screen.
func (s *Screen) ClearScreen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Clear()
	s.DrawBorder(BorderThickness)
	return s.Present()
}

// Pixel reports whether the buffered pixel is lit.
func (s *Screen) Pixel(x, y int) bool {
	return s.buf.BitAt(x, y) == image1bit.On
}

// Close blanks and halts the panel.
func (s *Screen) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Clear()
	if err := s.Present(); err != nil {
		return err
	}
	return s.panel.Halt()
}
