package render

import (
	"sync"

	"integral-solver/api"
)

// Display is a result area. Every Show replaces what was there before.
type Display struct {
	mu      sync.Mutex
	content string
	onShow  func(string)
}

func NewDisplay(onShow func(string)) *Display {
	return &Display{onShow: onShow}
}

func (d *Display) Show(fragment string) {
	d.mu.Lock()
	d.content = fragment
	hook := d.onShow
	d.mu.Unlock()
	if hook != nil {
		hook(fragment)
	}
}

func (d *Display) Content() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content
}

// Present formats the outcome of one solve call and shows it.
func Present(d *Display, f Formatter, resp *api.SolveResponse, err error) ViewModel {
	vm := FromOutcome(resp, err)
	d.Show(f.Render(vm))
	return vm
}
