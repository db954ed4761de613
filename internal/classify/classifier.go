// Package classify guesses a device category from its vendor prefix and name.
package classify

import (
	"strings"

	"dhcpconsole/internal/catalog"
)

const (
	// UnknownCategory is returned when nothing in the catalogue matches
	UnknownCategory = "unknown"
	// UnknownIcon is the generic device icon
	UnknownIcon = "💻"
)

// Result is the category guessed for a device
type Result struct {
	Icon     string `json:"icon"`
	Category string `json:"category"`
}

// Unknown is the result for a device nothing matched
var Unknown = Result{Icon: UnknownIcon, Category: UnknownCategory}

// Classify returns the best-guess category for a device. The vendor of the
// hardware-address prefix is tried first, then the device name; categories
// are scanned in catalogue order and the first keyword hit wins.
func Classify(cat *catalog.Catalogue, name, mac string) Result {
	if cat == nil {
		return Unknown
	}

	if vendor, ok := cat.Vendor(mac); ok {
		if r, ok := match(cat.Categories, strings.ToLower(vendor)); ok {
			return r
		}
	}

	if r, ok := match(cat.Categories, strings.ToLower(name)); ok {
		return r
	}

	return Unknown
}

func match(categories []catalog.Category, text string) (Result, bool) {
	if text == "" {
		return Result{}, false
	}

	for _, category := range categories {
		for _, keyword := range category.Keywords {
			if keyword != "" && strings.Contains(text, strings.ToLower(keyword)) {
				return Result{Icon: category.Icon, Category: category.Name}, true
			}
		}
	}
	return Result{}, false
}
