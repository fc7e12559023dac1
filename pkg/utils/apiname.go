package utils

import (
	"regexp"

	"github.com/lqor/igorforce/pkg/constants"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// DeriveAPIName builds the stored API name for a custom object or field:
// every whitespace run in the label becomes a single underscore, and the
// custom suffix is appended. Standard definitions keep their literal name
// and never go through this derivation.
func DeriveAPIName(label string) string {
	return whitespaceRuns.ReplaceAllString(label, "_") + constants.CustomSuffix
}
