package chrome

import (
	"context"
	"fmt"

	flipbook "github.com/porticus-lab/go-flipbook"
)

// Measurer lays content nodes out in an offscreen column of the viewer page
// and reports each node's box. It implements [flipbook.Measurer].
type Measurer struct {
	tab *Tab
}

// NewMeasurer returns a measurer that uses tab's layout engine.
func NewMeasurer(tab *Tab) *Measurer {
	return &Measurer{tab: tab}
}

// Measure implements [flipbook.Measurer].
func (m *Measurer) Measure(ctx context.Context, nodes []string, width int, fontScale float64) ([]flipbook.Box, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	var boxes []flipbook.Box
	if err := m.tab.eval(ctx, &boxes, "flipbook.measure", nodes, width, fontScale); err != nil {
		return nil, fmt.Errorf("chrome: measuring content: %w", err)
	}
	return boxes, nil
}
