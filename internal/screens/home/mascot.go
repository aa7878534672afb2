package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edchat/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default indigo
	MascotCelebrating                      // Gold, star eyes: recent achievement
	MascotSleepy                           // Dim, closed eyes: no study today
)

const mascotIdle = `  ,___,
  (o,o)
  /)_)
 ──"─"──`

const mascotCelebrating = `  ,___,
  (*,*)  ✦
  /)_)
 ──"─"──`

const mascotSleepy = `  ,___,
  (-,-) z
  /)_)
 ──"─"──`

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(v MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	switch v {
	case MascotCelebrating:
		art, fg = mascotCelebrating, theme.Highlight
	case MascotSleepy:
		art, fg = mascotSleepy, theme.TextDim
	}
	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
