package clipboard

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"sketchpad/internal/domain"
)

// paintStyle is the inherited presentation state while walking the tree.
type paintStyle struct {
	fill        string
	stroke      string
	strokeWidth float64
	opacity     float64
	tx, ty      float64 // accumulated translation
	fontSize    float64
	shadow      *domain.Shadow // not inherited
}

var defaultPaint = paintStyle{fill: "#000000", opacity: 1, fontSize: 16}

// svgCursor holds the parser state.
type svgCursor struct {
	styles  []paintStyle
	objects []domain.Object
	skip    int // depth inside ignored containers (defs, title, ...)
	text    *domain.Object
	textBuf strings.Builder

	filters  map[string]*domain.Shadow // drop shadows by filter id
	filterID string                    // filter element being read
}

type elementFunc func(c *svgCursor, attrs []xml.Attr) error

var elementFuncs = map[string]elementFunc{
	"svg":      containerF,
	"g":        containerF,
	"a":        containerF,
	"rect":     rectF,
	"circle":   circleF,
	"ellipse":  ellipseF,
	"line":     lineF,
	"polyline": polylineF,
	"polygon":  polygonF,
	"path":     pathF,
	"text":     textF,
}

var ignoredContainers = map[string]bool{
	"defs": true, "title": true, "desc": true, "metadata": true,
	"style": true, "clipPath": true, "mask": true, "symbol": true,
	"linearGradient": true, "radialGradient": true, "pattern": true, "filter": true,
}

// ParseSVG converts an SVG document into scene objects with fresh IDs.
// Unsupported elements are skipped. When the markup is malformed, the
// objects decoded before the error are returned together with the error.
func ParseSVG(text string) ([]domain.Object, error) {
	decoder := xml.NewDecoder(strings.NewReader(text))
	decoder.CharsetReader = charset.NewReaderLabel

	c := &svgCursor{styles: []paintStyle{defaultPaint}, filters: map[string]*domain.Shadow{}}
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return c.objects, fmt.Errorf("parse svg: %w", err)
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if err := c.start(se); err != nil {
				return c.objects, fmt.Errorf("parse svg <%s>: %w", se.Name.Local, err)
			}
		case xml.EndElement:
			c.end(se)
		case xml.CharData:
			if c.text != nil && c.skip == 0 {
				c.textBuf.Write(se)
			}
		}
	}
	return c.objects, nil
}

func (c *svgCursor) top() paintStyle { return c.styles[len(c.styles)-1] }

func (c *svgCursor) start(se xml.StartElement) error {
	if c.skip > 0 || ignoredContainers[se.Name.Local] {
		c.skip++
		switch se.Name.Local {
		case "filter":
			c.filterID = attrValue(se.Attr, "id")
		case "feDropShadow":
			return c.dropShadow(se.Attr)
		}
		return nil
	}
	if err := c.pushStyle(se.Attr); err != nil {
		return err
	}
	if fn, ok := elementFuncs[se.Name.Local]; ok {
		return fn(c, se.Attr)
	}
	return nil
}

func (c *svgCursor) end(se xml.EndElement) {
	if c.skip > 0 {
		c.skip--
		if se.Name.Local == "filter" {
			c.filterID = ""
		}
		return
	}
	if se.Name.Local == "text" && c.text != nil {
		c.text.Text = strings.TrimSpace(c.textBuf.String())
		c.objects = append(c.objects, *c.text)
		c.text = nil
		c.textBuf.Reset()
	}
	if len(c.styles) > 1 {
		c.styles = c.styles[:len(c.styles)-1]
	}
}

// pushStyle reads both the style attribute and the direct presentation
// attributes, on top of the inherited style.
func (c *svgCursor) pushStyle(attrs []xml.Attr) error {
	var pairs []string
	for _, attr := range attrs {
		switch strings.ToLower(attr.Name.Local) {
		case "style":
			pairs = append(pairs, strings.Split(attr.Value, ";")...)
		default:
			pairs = append(pairs, attr.Name.Local+":"+attr.Value)
		}
	}
	cur := c.top()
	cur.shadow = nil
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "filter" {
			cur.shadow = c.filters[filterRef(v)]
			continue
		}
		if err := readStyleAttr(&cur, k, v); err != nil {
			return err
		}
	}
	c.styles = append(c.styles, cur)
	return nil
}

func readStyleAttr(s *paintStyle, k, v string) error {
	switch k {
	case "fill":
		s.fill = color(v)
	case "stroke":
		s.stroke = color(v)
	case "stroke-width":
		f, err := parseLength(v)
		if err != nil {
			return err
		}
		s.strokeWidth = f
	case "opacity":
		f, err := parseLength(v)
		if err != nil {
			return err
		}
		s.opacity *= f
	case "font-size":
		f, err := parseLength(v)
		if err != nil {
			return err
		}
		s.fontSize = f
	case "transform":
		tx, ty := parseTranslate(v)
		s.tx += tx
		s.ty += ty
	}
	return nil
}

// dropShadow records an feDropShadow of the filter being read.
func (c *svgCursor) dropShadow(attrs []xml.Attr) error {
	if c.filterID == "" {
		return nil
	}
	v, err := numbers(attrs, "dx", "dy", "stdDeviation")
	if err != nil {
		return err
	}
	c.filters[c.filterID] = &domain.Shadow{
		Color:   attrValue(attrs, "flood-color"),
		Blur:    v["stdDeviation"] * 2,
		OffsetX: v["dx"],
		OffsetY: v["dy"],
	}
	return nil
}

// filterRef extracts the id from url(#id).
func filterRef(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "url(")
	v = strings.TrimSuffix(v, ")")
	return strings.TrimPrefix(strings.Trim(v, `"' `), "#")
}

func (c *svgCursor) newObject(kind domain.Kind) domain.Object {
	st := c.top()
	o := domain.Object{
		ID:          domain.NewObjectID(),
		Kind:        kind,
		Fill:        st.fill,
		Stroke:      st.stroke,
		StrokeWidth: st.strokeWidth,
		Opacity:     st.opacity,
	}
	if st.shadow != nil {
		sh := *st.shadow
		o.Shadow = &sh
	}
	return o
}

func containerF(*svgCursor, []xml.Attr) error { return nil } // only pushes the style

func rectF(c *svgCursor, attrs []xml.Attr) error {
	v, err := numbers(attrs, "x", "y", "width", "height", "rx", "ry")
	if err != nil {
		return err
	}
	o := c.newObject(domain.KindRect)
	st := c.top()
	o.Left, o.Top = v["x"]+st.tx, v["y"]+st.ty
	o.Width, o.Height = v["width"], v["height"]
	o.Rx, o.Ry = v["rx"], v["ry"]
	if o.Rx != 0 && o.Ry == 0 {
		o.Ry = o.Rx
	} else if o.Ry != 0 && o.Rx == 0 {
		o.Rx = o.Ry
	}
	c.objects = append(c.objects, o)
	return nil
}

func circleF(c *svgCursor, attrs []xml.Attr) error {
	v, err := numbers(attrs, "cx", "cy", "r")
	if err != nil {
		return err
	}
	o := c.newObject(domain.KindCircle)
	st := c.top()
	o.Radius = v["r"]
	o.Left, o.Top = v["cx"]-o.Radius+st.tx, v["cy"]-o.Radius+st.ty
	c.objects = append(c.objects, o)
	return nil
}

func ellipseF(c *svgCursor, attrs []xml.Attr) error {
	v, err := numbers(attrs, "cx", "cy", "rx", "ry")
	if err != nil {
		return err
	}
	o := c.newObject(domain.KindEllipse)
	st := c.top()
	o.Rx, o.Ry = v["rx"], v["ry"]
	o.Left, o.Top = v["cx"]-o.Rx+st.tx, v["cy"]-o.Ry+st.ty
	c.objects = append(c.objects, o)
	return nil
}

func lineF(c *svgCursor, attrs []xml.Attr) error {
	v, err := numbers(attrs, "x1", "y1", "x2", "y2")
	if err != nil {
		return err
	}
	o := c.newObject(domain.KindLine)
	st := c.top()
	o.Points = []domain.Point{
		{X: v["x1"] + st.tx, Y: v["y1"] + st.ty},
		{X: v["x2"] + st.tx, Y: v["y2"] + st.ty},
	}
	o.Left, o.Top = bounds(o.Points)
	c.objects = append(c.objects, o)
	return nil
}

func polylineF(c *svgCursor, attrs []xml.Attr) error {
	return c.polyF(domain.KindPolyline, attrs)
}

func polygonF(c *svgCursor, attrs []xml.Attr) error {
	return c.polyF(domain.KindPolygon, attrs)
}

func (c *svgCursor) polyF(kind domain.Kind, attrs []xml.Attr) error {
	raw := attrValue(attrs, "points")
	pts, err := parsePoints(raw)
	if err != nil {
		return err
	}
	st := c.top()
	for i := range pts {
		pts[i].X += st.tx
		pts[i].Y += st.ty
	}
	o := c.newObject(kind)
	o.Points = pts
	o.Left, o.Top = bounds(pts)
	c.objects = append(c.objects, o)
	return nil
}

func pathF(c *svgCursor, attrs []xml.Attr) error {
	d := strings.TrimSpace(attrValue(attrs, "d"))
	if d == "" {
		return nil
	}
	o := c.newObject(domain.KindPath)
	st := c.top()
	o.PathData = d
	o.Left, o.Top = st.tx, st.ty
	c.objects = append(c.objects, o)
	return nil
}

func textF(c *svgCursor, attrs []xml.Attr) error {
	v, err := numbers(attrs, "x", "y")
	if err != nil {
		return err
	}
	o := c.newObject(domain.KindText)
	st := c.top()
	o.FontSize = st.fontSize
	o.Left, o.Top = v["x"]+st.tx, v["y"]-st.fontSize+st.ty
	c.text = &o
	c.textBuf.Reset()
	return nil
}

// ── value helpers ──────────────────────────────────────────

func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// numbers reads the named numeric attributes; missing ones are zero.
func numbers(attrs []xml.Attr, names ...string) (map[string]float64, error) {
	out := make(map[string]float64, len(names))
	for _, a := range attrs {
		for _, n := range names {
			if a.Name.Local != n {
				continue
			}
			f, err := parseLength(a.Value)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", n, err)
			}
			out[n] = f
		}
	}
	return out, nil
}

var errNotFinite = errors.New("number is not finite")

// parseNumber is strconv.ParseFloat without NaN and infinities, which a
// snapshot cannot hold.
func parseNumber(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q: %w", v, errNotFinite)
	}
	return f, nil
}

func parseLength(v string) (float64, error) {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "px")
	if strings.HasSuffix(v, "%") {
		f, err := parseNumber(strings.TrimSuffix(v, "%"))
		return f / 100, err
	}
	return parseNumber(v)
}

func color(v string) string {
	if v == "" || strings.EqualFold(v, "none") || strings.EqualFold(v, "transparent") {
		return ""
	}
	return v
}

// splitOnCommaOrSpace returns the fields of s split on commas and whitespace.
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

func parsePoints(s string) ([]domain.Point, error) {
	fields := splitOnCommaOrSpace(s)
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("odd number of coordinates in %q", s)
	}
	pts := make([]domain.Point, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := parseNumber(fields[i])
		if err != nil {
			return nil, err
		}
		y, err := parseNumber(fields[i+1])
		if err != nil {
			return nil, err
		}
		pts = append(pts, domain.Point{X: x, Y: y})
	}
	return pts, nil
}

// parseTranslate sums every translate(...) in a transform list. Other
// transform functions are ignored.
func parseTranslate(v string) (tx, ty float64) {
	for _, t := range strings.Split(v, ")") {
		name, args, ok := strings.Cut(strings.TrimSpace(t), "(")
		if !ok || strings.ToLower(strings.TrimSpace(name)) != "translate" {
			continue
		}
		f := splitOnCommaOrSpace(args)
		if len(f) >= 1 {
			x, _ := parseNumber(f[0])
			tx += x
		}
		if len(f) >= 2 {
			y, _ := parseNumber(f[1])
			ty += y
		}
	}
	return tx, ty
}

func bounds(pts []domain.Point) (left, top float64) {
	for i, p := range pts {
		if i == 0 || p.X < left {
			left = p.X
		}
		if i == 0 || p.Y < top {
			top = p.Y
		}
	}
	return left, top
}
