package fonts

import (
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

// BuiltinFamily is the name under which the embedded Go fonts are registered.
const BuiltinFamily = "Go"

// builtinFamily parses the embedded Go fonts on first use.
var builtinFamily = sync.OnceValues(func() (*family, error) {
	f := &family{name: BuiltinFamily, weights: make(map[int]source, 3)}
	for w, data := range map[int][]byte{
		WeightRegular: goregular.TTF,
		WeightMedium:  gomedium.TTF,
		WeightBold:    gobold.TTF,
	} {
		src, err := parseSource(data)
		if err != nil {
			return nil, err
		}
		f.weights[w] = src
	}
	return f, nil
})
