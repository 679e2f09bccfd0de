package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"trustlens/internal/platform/validator"
)

// Fingerprint derives the cache key for one analyzer's input.
//
// The key covers the analyzer name, its whitespace-normalized input and its
// options, so two analyzers never share entries and changing an analyzer's
// options invalidates its previous results.
func Fingerprint(analyzer, input string, options map[string]any) string {
	h := sha256.New()
	h.Write([]byte(analyzer))
	h.Write([]byte{0})
	h.Write([]byte(validator.NormalizeWhitespace(input)))
	h.Write([]byte{0})
	if len(options) > 0 {
		// encoding/json sorts map keys
		if encoded, err := json.Marshal(options); err == nil {
			h.Write(encoded)
		} else {
			writeOptionsText(h, options)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeOptionsText covers options JSON cannot encode, such as YAML maps
// with non-string keys. fmt prints nested maps with sorted keys.
func writeOptionsText(w io.Writer, options map[string]any) {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprint(w, "text:")
	for _, k := range keys {
		fmt.Fprintf(w, "%q=%#v;", k, options[k])
	}
}
