package wave

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"golang.org/x/exp/shiny/materialdesign/icons"
)

var (
	colorBg    = color.NRGBA{R: 245, G: 246, B: 252, A: 255}
	colorGrid  = color.NRGBA{R: 220, G: 222, B: 232, A: 255}
	colorHigh  = color.NRGBA{R: 76, G: 175, B: 80, A: 255}
	colorLow   = color.NRGBA{R: 63, G: 81, B: 181, A: 255}
	colorLabel = color.NRGBA{R: 34, G: 37, B: 49, A: 255}
)

// Viewer plots a set of traces with keyboard and button zoom.
type Viewer struct {
	Window *app.Window
	Theme  *material.Theme

	traces    []Trace
	segments  [][]Segment
	view      Window
	bitPeriod uint64

	zoomIn, zoomOut, panLeft, panRight widget.Clickable
	iconIn, iconOut, iconLeft, iconRight *widget.Icon

	ops op.Ops
}

// NewViewer prepares traces covering [0, end). bitPeriod, when non-zero,
// draws a grid line at every bit boundary.
func NewViewer(w *app.Window, traces []Trace, end, bitPeriod uint64) *Viewer {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	th.Palette.Bg = colorBg
	th.Palette.Fg = colorLabel

	v := &Viewer{
		Window:    w,
		Theme:     th,
		traces:    traces,
		view:      Window{Span: end, End: end},
		bitPeriod: bitPeriod,
	}
	for _, t := range traces {
		v.segments = append(v.segments, Segments(t.Edges, end))
	}
	v.iconIn = mustIcon(icons.ActionZoomIn)
	v.iconOut = mustIcon(icons.ActionZoomOut)
	v.iconLeft = mustIcon(icons.NavigationChevronLeft)
	v.iconRight = mustIcon(icons.NavigationChevronRight)
	return v
}

func mustIcon(data []byte) *widget.Icon {
	icon, err := widget.NewIcon(data)
	if err != nil {
		slog.Warn("icon decode failed", "err", err)
		return nil
	}
	return icon
}

// Show opens a window for traces and blocks until it is closed.
func Show(title string, traces []Trace, end, bitPeriod uint64) {
	go func() {
		w := new(app.Window)
		w.Option(app.Title(title), app.Size(unit.Dp(1100), unit.Dp(120+80*len(traces))))
		if err := NewViewer(w, traces, end, bitPeriod).Run(); err != nil {
			slog.Error("wave viewer", "err", err)
		}
		os.Exit(0)
	}()
	app.Main()
}

// Run processes Gio events until the window is closed.
func (v *Viewer) Run() error {
	for {
		switch e := v.Window.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&v.ops, e)
			v.handleInput(gtx)
			v.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (v *Viewer) handleInput(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(
			key.Filter{Name: "+"},
			key.Filter{Name: "-"},
			key.Filter{Name: key.NameLeftArrow},
			key.Filter{Name: key.NameRightArrow},
		)
		if !ok {
			break
		}
		ke, ok := ev.(key.Event)
		if !ok || ke.State != key.Press {
			continue
		}
		switch ke.Name {
		case "+":
			v.view.Zoom(0.5)
		case "-":
			v.view.Zoom(2)
		case key.NameLeftArrow:
			v.view.Pan(-0.25)
		case key.NameRightArrow:
			v.view.Pan(0.25)
		}
	}
	if v.zoomIn.Clicked(gtx) {
		v.view.Zoom(0.5)
	}
	if v.zoomOut.Clicked(gtx) {
		v.view.Zoom(2)
	}
	if v.panLeft.Clicked(gtx) {
		v.view.Pan(-0.25)
	}
	if v.panRight.Clicked(gtx) {
		v.view.Pan(0.25)
	}
}

func (v *Viewer) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, colorBg)

	children := []layout.FlexChild{layout.Rigid(v.toolbar)}
	for i := range v.traces {
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return v.row(gtx, i)
		}))
	}
	return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
	})
}

func (v *Viewer) toolbar(gtx layout.Context) layout.Dimensions {
	button := func(c *widget.Clickable, icon *widget.Icon, desc string) layout.FlexChild {
		return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if icon == nil {
				return material.Button(v.Theme, c, desc).Layout(gtx)
			}
			return layout.Inset{Right: unit.Dp(4)}.Layout(gtx, material.IconButton(v.Theme, c, icon, desc).Layout)
		})
	}
	label := fmt.Sprintf("cycles %d..%d of %d", v.view.Start, v.view.Start+v.view.Span, v.view.End)
	return layout.Inset{Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			button(&v.panLeft, v.iconLeft, "<"),
			button(&v.zoomIn, v.iconIn, "+"),
			button(&v.zoomOut, v.iconOut, "-"),
			button(&v.panRight, v.iconRight, ">"),
			layout.Rigid(material.Body1(v.Theme, label).Layout),
		)
	})
}

func (v *Viewer) row(gtx layout.Context, i int) layout.Dimensions {
	height := gtx.Dp(unit.Dp(64))
	labelWidth := gtx.Dp(unit.Dp(80))
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min = image.Pt(labelWidth, height)
			gtx.Constraints.Max.X = labelWidth
			material.H6(v.Theme, v.traces[i].Name).Layout(gtx)
			return layout.Dimensions{Size: image.Pt(labelWidth, height)}
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			size := image.Pt(gtx.Constraints.Max.X, height)
			v.plot(gtx, size, v.view.Clip(v.segments[i]))
			return layout.Dimensions{Size: size}
		}),
	)
}

// plot draws one trace as a square wave inside size.
func (v *Viewer) plot(gtx layout.Context, size image.Point, segs []Segment) {
	if v.view.Span == 0 {
		return
	}
	scale := float64(size.X) / float64(v.view.Span)
	x := func(c uint64) int { return int(float64(c) * scale) }
	stroke := gtx.Dp(unit.Dp(2))
	top, bottom := size.Y/6, size.Y-size.Y/6

	if v.bitPeriod > 0 && float64(v.bitPeriod)*scale >= 4 {
		first := (v.view.Start + v.bitPeriod - 1) / v.bitPeriod * v.bitPeriod
		for c := first; c < v.view.Start+v.view.Span; c += v.bitPeriod {
			px := x(c - v.view.Start)
			paint.FillShape(gtx.Ops, colorGrid, clip.Rect{Min: image.Pt(px, 0), Max: image.Pt(px+1, size.Y)}.Op())
		}
	}

	for j, s := range segs {
		y, col := bottom, colorLow
		if s.High {
			y, col = top, colorHigh
		}
		x0, x1 := x(s.From), x(s.To)
		paint.FillShape(gtx.Ops, col, clip.Rect{Min: image.Pt(x0, y-stroke/2), Max: image.Pt(max(x1, x0+1), y+stroke-stroke/2)}.Op())
		if j > 0 && segs[j-1].High != s.High && segs[j-1].To == s.From {
			paint.FillShape(gtx.Ops, colorLabel, clip.Rect{Min: image.Pt(x0-stroke/2, top), Max: image.Pt(x0+stroke-stroke/2, bottom)}.Op())
		}
	}
}
