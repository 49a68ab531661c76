package types

import "errors"

// ErrEmptyBoxes is returned when combining an empty set of bounding boxes,
// which has no defined result.
var ErrEmptyBoxes = errors.New("cannot combine an empty list of bounding boxes")

// BoundingBox is an axis-aligned rectangle normalized to the containing
// page, so all coordinates are in the 0..1 range.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b BoundingBox) Right() float64 {
	return b.Left + b.Width
}

func (b BoundingBox) Bottom() float64 {
	return b.Top + b.Height
}

// CenterY is the vertical center of the box, used for visual row grouping.
func (b BoundingBox) CenterY() float64 {
	return b.Top + b.Height/2
}

// CombineBoundingBoxes returns the minimal rectangle enclosing all of the
// given boxes. The result does not depend on the order of the input.
func CombineBoundingBoxes(boxes []BoundingBox) (BoundingBox, error) {
	if len(boxes) == 0 {
		return BoundingBox{}, ErrEmptyBoxes
	}

	minLeft := boxes[0].Left
	minTop := boxes[0].Top
	maxRight := boxes[0].Right()
	maxBottom := boxes[0].Bottom()

	for _, b := range boxes[1:] {
		if b.Left < minLeft {
			minLeft = b.Left
		}
		if b.Top < minTop {
			minTop = b.Top
		}
		if r := b.Right(); r > maxRight {
			maxRight = r
		}
		if bt := b.Bottom(); bt > maxBottom {
			maxBottom = bt
		}
	}

	return BoundingBox{
		Left:   minLeft,
		Top:    minTop,
		Width:  maxRight - minLeft,
		Height: maxBottom - minTop,
	}, nil
}

// CombineOrFallback combines the given boxes, returning fallback unchanged
// when the set is empty. Callers typically pass the parent block's own box.
func CombineOrFallback(boxes []BoundingBox, fallback BoundingBox) BoundingBox {
	combined, err := CombineBoundingBoxes(boxes)
	if err != nil {
		return fallback
	}
	return combined
}
