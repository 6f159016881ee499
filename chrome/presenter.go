package chrome

import (
	"context"
	"strings"

	flipbook "github.com/porticus-lab/go-flipbook"
)

type presentation struct {
	Label       string  `json:"label"`
	Direction   string  `json:"direction"`
	Mode        string  `json:"mode"`
	Scale       float64 `json:"scale"`
	PanX        float64 `json:"panX"`
	PanY        float64 `json:"panY"`
	Edges       bool    `json:"edges"`
	ReadSide    string  `json:"readSide"`
	ReadWidth   int     `json:"readWidth"`
	UnreadWidth int     `json:"unreadWidth"`
	Sound       bool    `json:"sound"`
	FontScale   float64 `json:"fontScale"`
}

// Present implements [flipbook.Presenter]: it updates the toolbar, the read
// edge markers and the zoom transform of the viewer page.
func (t *Tab) Present(ctx context.Context, s flipbook.State) error {
	p := presentation{
		Label:       s.Label,
		Direction:   strings.ToUpper(s.Direction.String()),
		Mode:        strings.ToUpper(s.Mode.String()[:1]) + s.Mode.String()[1:],
		Scale:       s.Scale,
		PanX:        s.PanX,
		PanY:        s.PanY,
		Edges:       s.Edges.Visible,
		ReadSide:    s.Edges.ReadSide.String(),
		ReadWidth:   s.Edges.ReadWidth,
		UnreadWidth: s.Edges.UnreadWidth,
		Sound:       s.Sound,
		FontScale:   s.FontScale,
	}
	return t.eval(ctx, nil, "flipbook.present", p)
}

// Cue implements [flipbook.Feedback] by playing a short page-turn sound.
func (t *Tab) Cue(ctx context.Context) error {
	return t.eval(ctx, nil, "flipbook.cue")
}

// Share implements [flipbook.Feedback] through the Web Share API, falling
// back to the clipboard.
func (t *Tab) Share(ctx context.Context, url string) error {
	return t.eval(ctx, nil, "flipbook.share", url)
}

// ReplacePage implements [flipbook.Location] by rewriting the p parameter of
// the page URL without adding a history entry.
func (t *Tab) ReplacePage(ctx context.Context, page int) error {
	return t.eval(ctx, nil, "flipbook.replacePage", page)
}
