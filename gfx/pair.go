package gfx

import "fmt"

// Pair is a front/back pair of equally sized targets for ping-pong passes.
// Passes read front, write back, then Swap.
type Pair struct {
	front, back Target
	w, h        int
}

// NewPair allocates two targets of w×h.
func NewPair(dev Device, w, h int) (*Pair, error) {
	front, err := dev.NewTarget(w, h)
	if err != nil {
		return nil, fmt.Errorf("allocating front target: %w", err)
	}
	back, err := dev.NewTarget(w, h)
	if err != nil {
		dev.ReleaseTarget(front)
		return nil, fmt.Errorf("allocating back target: %w", err)
	}
	return &Pair{front: front, back: back, w: w, h: h}, nil
}

// Front is the most recently completed image.
func (p *Pair) Front() Target { return p.front }

// Back is the scratch target for the next pass.
func (p *Pair) Back() Target { return p.back }

// Swap exchanges front and back.
func (p *Pair) Swap() {
	p.front, p.back = p.back, p.front
}

// Width returns the target width in pixels.
func (p *Pair) Width() int { return p.w }

// Height returns the target height in pixels.
func (p *Pair) Height() int { return p.h }

// Release frees both targets. A nil pair is a no-op.
func (p *Pair) Release(dev Device) {
	if p == nil {
		return
	}
	dev.ReleaseTarget(p.front)
	dev.ReleaseTarget(p.back)
	p.front, p.back = nil, nil
}

// Blur runs iterations of separable blur over the front image, leaving
// the result in front.
func (p *Pair) Blur(dev Device, iterations int) {
	for i := 0; i < iterations; i++ {
		for _, horizontal := range [2]bool{true, false} {
			src := p.front
			WithTarget(dev, p.back, func() {
				dev.Blur5(src, horizontal)
			})
			p.Swap()
		}
	}
}
