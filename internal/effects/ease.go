package effects

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Func is an easing curve. Every Func returned by this package maps 0 to 0 and
// 1 to 1 exactly and clamps input outside [0,1].
type Func func(float64) float64

// Linear is the identity curve.
func Linear(t float64) float64 { return clamp01(t) }

// EaseInOutCubic is the default curve for timeline bindings.
var EaseInOutCubic = inOut(powIn(3))

// Ease resolves a curve by name. Accepted forms follow the tween libraries
// the site was designed with: "none", "linear", "power2.out", "cubic.inOut",
// "expo.out", "back.out(1.7)", "elastic", "sine.in". A family without a
// variant defaults to ".out"; an empty name is linear.
func Ease(name string) (Func, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "none" || name == "linear" {
		return Linear, nil
	}

	param := math.NaN()
	if i := strings.IndexByte(name, '('); i >= 0 {
		if !strings.HasSuffix(name, ")") {
			return nil, fmt.Errorf("ease %q: unbalanced parameter", name)
		}
		v, err := strconv.ParseFloat(name[i+1:len(name)-1], 64)
		if err != nil {
			return nil, fmt.Errorf("ease %q: bad parameter: %w", name, err)
		}
		param = v
		name = name[:i]
	}

	family, variant, _ := strings.Cut(name, ".")
	if variant == "" {
		// Also accept "easeOutCubic"-style names.
		if f, v, ok := splitCamel(family); ok {
			family, variant = f, v
		} else {
			variant = "out"
		}
	}

	in, err := curveIn(strings.ToLower(family), param)
	if err != nil {
		return nil, fmt.Errorf("ease %q: %w", name, err)
	}

	switch strings.ToLower(variant) {
	case "in":
		return bounded(in), nil
	case "out":
		return out(in), nil
	case "inout":
		return inOut(in), nil
	}
	return nil, fmt.Errorf("ease %q: unknown variant %q", name, variant)
}

// MustEase is Ease for names known to be valid.
func MustEase(name string) Func {
	f, err := Ease(name)
	if err != nil {
		panic(err)
	}
	return f
}

func splitCamel(s string) (family, variant string, ok bool) {
	rest, found := strings.CutPrefix(s, "ease")
	if !found {
		return "", "", false
	}
	for _, v := range []string{"InOut", "In", "Out"} {
		if f, ok := strings.CutPrefix(rest, v); ok && f != "" {
			return f, strings.ToLower(v), true
		}
	}
	return "", "", false
}

func curveIn(family string, param float64) (Func, error) {
	switch family {
	case "power1", "quad":
		return powIn(2), nil
	case "power2", "cubic":
		return powIn(3), nil
	case "power3", "quart":
		return powIn(4), nil
	case "power4", "quint", "strong":
		return powIn(5), nil
	case "sine":
		return func(t float64) float64 { return 1 - math.Cos(t*math.Pi/2) }, nil
	case "expo":
		return func(t float64) float64 {
			if t == 0 {
				return 0
			}
			return math.Pow(2, 10*t-10)
		}, nil
	case "circ":
		return func(t float64) float64 { return 1 - math.Sqrt(1-t*t) }, nil
	case "back":
		s := 1.70158
		if !math.IsNaN(param) {
			s = param
		}
		return func(t float64) float64 { return (s+1)*t*t*t - s*t*t }, nil
	case "elastic":
		c := 2 * math.Pi / 3
		return func(t float64) float64 {
			if t == 0 || t == 1 {
				return t
			}
			return -math.Pow(2, 10*t-10) * math.Sin((t*10-10.75)*c)
		}, nil
	}
	return nil, fmt.Errorf("unknown family %q", family)
}

func powIn(n int) Func {
	return func(t float64) float64 { return math.Pow(t, float64(n-1)) * t }
}

func bounded(f Func) Func {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return f(t)
	}
}

func out(in Func) Func {
	return bounded(func(t float64) float64 { return 1 - in(1-t) })
}

func inOut(in Func) Func {
	return bounded(func(t float64) float64 {
		if t < 0.5 {
			return in(2*t) / 2
		}
		return 1 - in(2*(1-t))/2
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
