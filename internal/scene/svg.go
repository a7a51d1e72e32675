package scene

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"sketchpad/internal/domain"
)

// SVG renders a single object as a standalone SVG element with absolute
// coordinates. The output is parseable by the clipboard SVG reader. A drop
// shadow is written as a filter element right before the object.
func SVG(o domain.Object) string {
	return shadowFilter(o) + element(o)
}

// ShadowFilterID is the id of the filter carrying the shadow of o.
func ShadowFilterID(o domain.Object) string {
	return "shadow-" + o.ID
}

func shadowFilter(o domain.Object) string {
	if o.Shadow == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("<filter")
	attr(&b, "id", ShadowFilterID(o))
	b.WriteString("><feDropShadow")
	attr(&b, "dx", num(o.Shadow.OffsetX))
	attr(&b, "dy", num(o.Shadow.OffsetY))
	attr(&b, "stdDeviation", num(o.Shadow.Blur/2))
	attr(&b, "flood-color", o.Shadow.Color)
	b.WriteString("/></filter>")
	return b.String()
}

func element(o domain.Object) string {
	var b strings.Builder
	switch o.Kind {
	case domain.KindRect:
		b.WriteString("<rect")
		attr(&b, "x", num(o.Left))
		attr(&b, "y", num(o.Top))
		attr(&b, "width", num(o.Width))
		attr(&b, "height", num(o.Height))
		if o.Rx != 0 {
			attr(&b, "rx", num(o.Rx))
		}
		if o.Ry != 0 {
			attr(&b, "ry", num(o.Ry))
		}
	case domain.KindCircle:
		b.WriteString("<circle")
		attr(&b, "cx", num(o.Left+o.Radius))
		attr(&b, "cy", num(o.Top+o.Radius))
		attr(&b, "r", num(o.Radius))
	case domain.KindEllipse:
		b.WriteString("<ellipse")
		attr(&b, "cx", num(o.Left+o.Rx))
		attr(&b, "cy", num(o.Top+o.Ry))
		attr(&b, "rx", num(o.Rx))
		attr(&b, "ry", num(o.Ry))
	case domain.KindTriangle:
		b.WriteString("<polygon")
		attr(&b, "points", points(TrianglePoints(o)))
	case domain.KindLine:
		b.WriteString("<line")
		var p1, p2 domain.Point
		if len(o.Points) > 0 {
			p1 = o.Points[0]
		}
		if len(o.Points) > 1 {
			p2 = o.Points[1]
		}
		attr(&b, "x1", num(p1.X))
		attr(&b, "y1", num(p1.Y))
		attr(&b, "x2", num(p2.X))
		attr(&b, "y2", num(p2.Y))
	case domain.KindPolyline, domain.KindPolygon:
		b.WriteString("<" + string(o.Kind))
		attr(&b, "points", points(o.Points))
	case domain.KindPath:
		b.WriteString("<path")
		attr(&b, "d", o.PathData)
		if o.Left != 0 || o.Top != 0 {
			attr(&b, "transform", "translate("+num(o.Left)+" "+num(o.Top)+")")
		}
	case domain.KindText:
		b.WriteString("<text")
		attr(&b, "x", num(o.Left))
		attr(&b, "y", num(o.Top+o.FontSize))
		attr(&b, "font-size", num(o.FontSize))
		paint(&b, o)
		b.WriteString(">")
		b.WriteString(escape(o.Text))
		b.WriteString("</text>")
		return b.String()
	default:
		return fmt.Sprintf("<!-- unsupported object %s -->", escape(string(o.Kind)))
	}
	paint(&b, o)
	b.WriteString("/>")
	return b.String()
}

// Document wraps SVG fragments in a single root element, one per line.
func Document(fragments []string) string {
	return "<svg xmlns=\"http://www.w3.org/2000/svg\">\n" + strings.Join(fragments, "\n") + "\n</svg>"
}

// TrianglePoints returns the isosceles triangle inscribed in the object's box:
// apex at top center, base along the bottom edge.
func TrianglePoints(o domain.Object) []domain.Point {
	return []domain.Point{
		{X: o.Left + o.Width/2, Y: o.Top},
		{X: o.Left + o.Width, Y: o.Top + o.Height},
		{X: o.Left, Y: o.Top + o.Height},
	}
}

func paint(b *strings.Builder, o domain.Object) {
	attr(b, "fill", orNone(o.Fill))
	attr(b, "stroke", orNone(o.Stroke))
	if o.StrokeWidth != 0 {
		attr(b, "stroke-width", num(o.StrokeWidth))
	}
	if o.Opacity != 1 {
		attr(b, "opacity", num(o.Opacity))
	}
	if o.Shadow != nil {
		attr(b, "filter", "url(#"+ShadowFilterID(o)+")")
	}
}

func attr(b *strings.Builder, name, value string) {
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(escape(value))
	b.WriteString(`"`)
}

func orNone(color string) string {
	if color == "" {
		return "none"
	}
	return color
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func points(pts []domain.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
