package dist

import (
	"strings"

	"github.com/matzehuels/una/pkg/errors"
	"github.com/matzehuels/una/pkg/names"
)

// KnownAliases lists distributions whose import name differs from the
// distribution name and that commonly ship without top_level.txt.
var KnownAliases = map[string][]string{
	"beautifulsoup4":    {"bs4"},
	"pillow":            {"PIL"},
	"scikit-learn":      {"sklearn"},
	"scikit-image":      {"skimage"},
	"opencv-python":     {"cv2"},
	"python-ffmpeg":     {"ffmpeg"},
	"pycryptodome":      {"Crypto"},
	"pycryptodomex":     {"Cryptodome"},
	"pyserial":          {"serial"},
	"python-multipart":  {"multipart"},
	"pyusb":             {"usb"},
	"pyyaml":            {"yaml"},
	"python-dateutil":   {"dateutil"},
	"attrs":             {"attr", "attrs"},
	"protobuf":          {"google"},
	"google-cloud-core": {"google"},
}

// ParseAlias parses one "dist=import[,import...]" declaration.
func ParseAlias(s string) (string, []string, error) {
	k, v, ok := strings.Cut(s, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", nil, errors.New(errors.ErrCodeInvalidInput, "invalid alias %q, expected NAME=IMPORT[,IMPORT...]", s)
	}
	var values []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return k, values, nil
}

// ParseAliases parses a list of alias declarations. Later declarations for
// the same distribution replace earlier ones.
func ParseAliases(aliases []string) (map[string][]string, error) {
	out := make(map[string][]string, len(aliases))
	for _, a := range aliases {
		k, v, err := ParseAlias(a)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// PickAliases returns the union of alias values whose distribution is in
// keys. Distribution names are compared in normalized form.
func PickAliases(aliases map[string][]string, keys names.Set) names.Set {
	wanted := keys.Map(Normalize)
	out := names.New(0)
	for k, v := range aliases {
		if wanted.Has(Normalize(k)) {
			out.Add(v...)
		}
	}
	return out
}
