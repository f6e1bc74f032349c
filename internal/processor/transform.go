package processor

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Transform re-orients src according to action and returns the new raster
// with its dimensions. The mapping is built around the centre of the output
// canvas: translate to the canvas centre, apply the action's linear map, then
// draw the source offset by half its own size.
func Transform(src image.Image, action Action) (*image.RGBA, int, int, error) {
	linear, err := linearMap(action)
	if err != nil {
		return nil, 0, 0, err
	}

	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()
	outW, outH := srcW, srcH
	if action.SwapsDimensions() {
		outW, outH = srcH, srcW
	}

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))

	toCentre := translate(float64(outW)/2, float64(outH)/2)
	fromSource := translate(-float64(srcW)/2-float64(sb.Min.X), -float64(srcH)/2-float64(sb.Min.Y))
	s2d := mul(mul(toCentre, linear), fromSource)

	draw.NearestNeighbor.Transform(dst, s2d, src, sb, draw.Src, nil)
	return dst, outW, outH, nil
}

// linearMap returns the action's map in image coordinates, where y grows
// downwards so positive angles turn clockwise on screen.
func linearMap(action Action) (f64.Aff3, error) {
	switch action {
	case ActionFlipHorizontal:
		return f64.Aff3{-1, 0, 0, 0, 1, 0}, nil
	case ActionFlipVertical:
		return f64.Aff3{1, 0, 0, 0, -1, 0}, nil
	case ActionRotate90:
		return f64.Aff3{0, -1, 0, 1, 0, 0}, nil
	case ActionRotate180:
		return f64.Aff3{-1, 0, 0, 0, -1, 0}, nil
	case ActionRotate270:
		return f64.Aff3{0, 1, 0, -1, 0, 0}, nil
	default:
		return f64.Aff3{}, fmt.Errorf("unknown action %q", action)
	}
}

func translate(tx, ty float64) f64.Aff3 {
	return f64.Aff3{1, 0, tx, 0, 1, ty}
}

// mul composes two affine maps so that b is applied first.
func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}
