package core

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"
)

// ScreenText is the static content of the info screen.
type ScreenText struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Contact  string   `json:"contact"`
	Messages []string `json:"messages"`
}

// Baselines of the four text rows on a 64 px high panel.
const (
	rowTitle   = 12
	rowContact = 30
	rowMessage = 56

	subtitleGap   = 4
	messageCenter = 63
)

var (
	largeFont  tinyfont.Fonter = &freemono.Bold9pt7b
	mediumFont tinyfont.Fonter = &proggy.TinySZ8pt7b
	pixelOn                    = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// InfoScreen draws the status page and rotates through its messages, one
// per frame.
type InfoScreen struct {
	text     ScreenText
	msgIndex int
}

// NewInfoScreen creates a screen showing text.
func NewInfoScreen(text ScreenText) *InfoScreen {
	return &InfoScreen{text: text}
}

// Message returns the message the next Draw will show.
func (s *InfoScreen) Message() string {
	if len(s.text.Messages) == 0 {
		return ""
	}
	return s.text.Messages[s.msgIndex]
}

// Draw renders the page into d's frame buffer and advances the message.
func (s *InfoScreen) Draw(d drivers.Displayer) {
	_, titleWidth := tinyfont.LineWidth(largeFont, s.text.Title)
	tinyfont.WriteLine(d, largeFont, 0, rowTitle, s.text.Title, pixelOn)

	x := int16(titleWidth) + subtitleGap
	tinyfont.WriteLine(d, mediumFont, x, rowTitle, s.text.Subtitle, pixelOn)

	_, subWidth := tinyfont.LineWidth(mediumFont, s.text.Subtitle)
	lineEnd := x + int16(subWidth)
	writeCentered(d, mediumFont, lineEnd/2-1, rowContact, s.text.Contact)

	if len(s.text.Messages) > 0 {
		writeCentered(d, mediumFont, messageCenter, rowMessage, s.Message())
		s.msgIndex = (s.msgIndex + 1) % len(s.text.Messages)
	}
}

func writeCentered(d drivers.Displayer, f tinyfont.Fonter, cx, y int16, str string) {
	_, w := tinyfont.LineWidth(f, str)
	tinyfont.WriteLine(d, f, cx-int16(w/2), y, str, pixelOn)
}
