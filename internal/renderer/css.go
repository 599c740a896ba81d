package renderer

import (
	"fmt"
	"strings"
)

// CSS renders a style as inline declarations. Transforms use translate3d so
// the element is promoted to its own compositor layer.
func CSS(s Style) string {
	var decls []string

	var transform []string
	if s.Has(FieldTranslate) {
		unit := s.TranslateUnit
		if unit == "" {
			unit = UnitPx
		}
		transform = append(transform, fmt.Sprintf("translate3d(%s%s, %s%s, 0)",
			num(s.TranslateX), unit, num(s.TranslateY), unit))
	}
	if s.Has(FieldRotate) {
		transform = append(transform, fmt.Sprintf("rotate(%sdeg)", num(s.Rotate)))
	}
	if s.Has(FieldScale) {
		if s.ScaleX == s.ScaleY {
			transform = append(transform, fmt.Sprintf("scale(%s)", num(s.ScaleX)))
		} else {
			transform = append(transform, fmt.Sprintf("scale(%s, %s)", num(s.ScaleX), num(s.ScaleY)))
		}
	}
	if len(transform) > 0 {
		decls = append(decls, "transform: "+strings.Join(transform, " "))
	}
	if s.Has(FieldOpacity) {
		decls = append(decls, "opacity: "+num(s.Opacity))
	}
	if s.Has(FieldClip) {
		decls = append(decls, fmt.Sprintf("clip-path: inset(%s%% %s%% %s%% %s%%)",
			num(s.Clip.Top*100), num(s.Clip.Right*100), num(s.Clip.Bottom*100), num(s.Clip.Left*100)))
	}
	if s.Has(FieldBackground) {
		decls = append(decls, "background-color: "+s.Background.Clamped().Hex())
	}
	if s.Has(FieldColor) {
		decls = append(decls, "color: "+s.Color.Clamped().Hex())
	}
	return strings.Join(decls, "; ")
}

// num prints up to four decimals without trailing zeros.
func num(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
