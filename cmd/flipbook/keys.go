package main

import (
	"bytes"
	"context"

	flipbook "github.com/porticus-lab/go-flipbook"
)

// command is one toolbar or keyboard action applied to the viewer.
type command func(ctx context.Context, v *flipbook.Viewer) error

const quit = "quit"

var commands = map[string]command{
	"next":       func(ctx context.Context, v *flipbook.Viewer) error { return v.Next(ctx) },
	"prev":       func(ctx context.Context, v *flipbook.Viewer) error { return v.Prev(ctx) },
	"first":      func(ctx context.Context, v *flipbook.Viewer) error { return v.First(ctx) },
	"last":       func(ctx context.Context, v *flipbook.Viewer) error { return v.Last(ctx) },
	"zoom-in":    func(_ context.Context, v *flipbook.Viewer) error { return v.ZoomIn() },
	"zoom-out":   func(_ context.Context, v *flipbook.Viewer) error { return v.ZoomOut() },
	"zoom-reset": func(_ context.Context, v *flipbook.Viewer) error { return v.ResetZoom() },
	"direction":  func(_ context.Context, v *flipbook.Viewer) error { return v.ToggleDirection() },
	"mode":       func(_ context.Context, v *flipbook.Viewer) error { return v.ToggleMode() },
	"font-up":    func(_ context.Context, v *flipbook.Viewer) error { return v.FontLarger() },
	"font-down":  func(_ context.Context, v *flipbook.Viewer) error { return v.FontSmaller() },
	"sound": func(_ context.Context, v *flipbook.Viewer) error {
		v.SetSound(!v.Sound())
		return nil
	},
	"share": func(ctx context.Context, v *flipbook.Viewer) error {
		v.Share(ctx)
		return nil
	},
}

// keyCommand maps a key name, as the page reports it, to a command name.
// Arrow keys turn visually: the right arrow reads backwards in an RTL book.
func keyCommand(key string, dir flipbook.Direction) string {
	switch key {
	case "ArrowRight", "PageDown", " ", "n":
		if key == "ArrowRight" && dir == flipbook.RTL {
			return "prev"
		}
		return "next"
	case "ArrowLeft", "PageUp", "p":
		if key == "ArrowLeft" && dir == flipbook.RTL {
			return "next"
		}
		return "prev"
	case "Home", "g":
		return "first"
	case "End", "G":
		return "last"
	case "+", "=":
		return "zoom-in"
	case "-":
		return "zoom-out"
	case "0":
		return "zoom-reset"
	case "d":
		return "direction"
	case "m":
		return "mode"
	case "]":
		return "font-up"
	case "[":
		return "font-down"
	case "s":
		return "sound"
	case "S":
		return "share"
	case "q", "Q":
		return quit
	}
	return ""
}

var escapes = map[string]string{
	"\x1b[C":  "ArrowRight",
	"\x1b[D":  "ArrowLeft",
	"\x1b[H":  "Home",
	"\x1b[F":  "End",
	"\x1b[1~": "Home",
	"\x1b[4~": "End",
	"\x1b[5~": "PageUp",
	"\x1b[6~": "PageDown",
	"\x1bOC":  "ArrowRight",
	"\x1bOD":  "ArrowLeft",
}

// terminalKeys splits raw terminal input into key names. Unknown escape
// sequences are dropped; Ctrl-C reads as "q".
func terminalKeys(in []byte) []string {
	var keys []string
	for len(in) > 0 {
		if in[0] == 0x1b {
			matched := false
			for seq, name := range escapes {
				if bytes.HasPrefix(in, []byte(seq)) {
					keys = append(keys, name)
					in = in[len(seq):]
					matched = true
					break
				}
			}
			if !matched {
				// skip parameters and the final byte of an unknown sequence
				end := 1
				if len(in) > 1 && (in[1] == '[' || in[1] == 'O') {
					end = 2
					for end < len(in) && in[end] >= 0x20 && in[end] <= 0x3f {
						end++
					}
					if end < len(in) {
						end++
					}
				}
				in = in[end:]
			}
			continue
		}
		switch in[0] {
		case 0x03:
			keys = append(keys, "q")
		case '\r', '\n':
			keys = append(keys, "PageDown")
		default:
			keys = append(keys, string(in[0]))
		}
		in = in[1:]
	}
	return keys
}
