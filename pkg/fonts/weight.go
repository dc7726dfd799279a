package fonts

import "strings"

// Standard weights.
const (
	WeightThin       = 100
	WeightExtraLight = 200
	WeightLight      = 300
	WeightRegular    = 400
	WeightMedium     = 500
	WeightSemiBold   = 600
	WeightBold       = 700
	WeightExtraBold  = 800
	WeightBlack      = 900
)

// weightNames maps subfamily keywords to weights. Longer keywords come first
// so "semibold" is matched before "bold".
var weightNames = []struct {
	name   string
	weight int
}{
	{"extralight", WeightExtraLight},
	{"ultralight", WeightExtraLight},
	{"extrabold", WeightExtraBold},
	{"ultrabold", WeightExtraBold},
	{"semibold", WeightSemiBold},
	{"demibold", WeightSemiBold},
	{"regular", WeightRegular},
	{"medium", WeightMedium},
	{"normal", WeightRegular},
	{"black", WeightBlack},
	{"heavy", WeightBlack},
	{"light", WeightLight},
	{"thin", WeightThin},
	{"bold", WeightBold},
	{"book", WeightRegular},
}

// WeightFromName guesses a numeric weight from a style or file name such as
// "SemiBold Italic" or "Inter-ExtraBold". Unknown names are regular.
func WeightFromName(name string) int {
	n := strings.ToLower(name)
	n = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(n)
	for _, w := range weightNames {
		if strings.Contains(n, w.name) {
			return w.weight
		}
	}
	return WeightRegular
}

// WeightName returns the conventional style name for a weight, rounded to the
// nearest hundred.
func WeightName(weight int) string {
	switch (weight + 50) / 100 * 100 {
	case WeightThin:
		return "Thin"
	case WeightExtraLight:
		return "ExtraLight"
	case WeightLight:
		return "Light"
	case WeightMedium:
		return "Medium"
	case WeightSemiBold:
		return "SemiBold"
	case WeightBold:
		return "Bold"
	case WeightExtraBold:
		return "ExtraBold"
	case WeightBlack:
		return "Black"
	}
	return "Regular"
}

// family is a set of weights of one typeface.
type family struct {
	name    string
	weights map[int]source
}

// nearest picks the registered weight closest to want. Ties go to the heavier
// weight for bold-ish requests (>= 500) and to the lighter one otherwise.
func (f *family) nearest(want int) (int, source, bool) {
	best, found := 0, false
	for w := range f.weights {
		if !found || closer(w, best, want) {
			best, found = w, true
		}
	}
	if !found {
		return 0, nil, false
	}
	return best, f.weights[best], true
}

func closer(a, b, want int) bool {
	da, db := abs(a-want), abs(b-want)
	if da != db {
		return da < db
	}
	if want >= WeightMedium {
		return a > b
	}
	return a < b
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
