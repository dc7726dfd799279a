package fonts

import (
	"errors"
	"os"
	"strings"

	"github.com/flopp/go-findfont"
)

// DefaultSystemFallbacks lists font files tried, in order, when the requested
// family is not available. They cover the stock fonts of common Linux
// distributions, macOS and Windows.
var DefaultSystemFallbacks = []string{
	"DejaVuSans.ttf",
	"LiberationSans-Regular.ttf",
	"NotoSans-Regular.ttf",
	"Arial.ttf",
	"arial.ttf",
	"Helvetica.ttc",
}

var errNoCandidates = errors.New("no candidate font files")

// Finder locates a font file by file name and returns its path.
type Finder func(name string) (string, error)

// systemCandidates returns file names that an installed copy of family at
// weight would plausibly use, for example "Inter-Bold.ttf" and "Inter.ttf".
func systemCandidates(family string, weight int) []string {
	base := strings.ReplaceAll(strings.TrimSpace(family), " ", "")
	if base == "" {
		return nil
	}
	style := WeightName(weight)
	var out []string
	for _, ext := range []string{".ttf", ".otf"} {
		out = append(out, base+"-"+style+ext)
		if weight == WeightRegular {
			out = append(out, base+ext)
		}
	}
	if weight != WeightRegular {
		out = append(out, base+".ttf", base+".otf")
	}
	return out
}

// findSource looks up each name with find and parses the first file that
// exists and parses. It returns the name that matched.
func findSource(find Finder, names []string) (source, string, error) {
	var lastErr error
	for _, name := range names {
		path, err := find(name)
		if err != nil {
			lastErr = err
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			lastErr = err
			continue
		}
		src, err := parseSource(data)
		if err != nil {
			lastErr = err
			continue
		}
		return src, name, nil
	}
	if lastErr == nil {
		lastErr = errNoCandidates
	}
	return nil, "", lastErr
}

// ListSystem returns the paths of all font files go-findfont can see.
func ListSystem() []string {
	return findfont.List()
}
