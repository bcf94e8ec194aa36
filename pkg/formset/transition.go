package formset

import "golang.org/x/net/html"

// Transition runs visual show/hide effects. Hide must call done exactly
// once, when the effect completes; the structural removal happens inside
// done. Transitions cannot be cancelled.
type Transition interface {
	Show(node *html.Node)
	Hide(node *html.Node, done func())
}

// Instant applies no effect and completes immediately.
type Instant struct{}

// Show implements Transition.
func (Instant) Show(*html.Node) {}

// Hide implements Transition.
func (Instant) Hide(_ *html.Node, done func()) {
	if done != nil {
		done()
	}
}
