package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/sba-spread/pkg/constants"
)

// OutputFormats lists the report renderings the spread command supports.
var OutputFormats = []string{
	constants.OutputFormatPretty,
	constants.OutputFormatCSV,
	constants.OutputFormatJSON,
}

// NormalizeOutputFormat trims and lowercases format and returns it when it
// names a supported report rendering.
func NormalizeOutputFormat(format string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	for _, f := range OutputFormats {
		if normalized == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("expected output format of %s, got %q",
		strings.Join(OutputFormats, ", "), format)
}

// ValidateOutputFormat checks that format names a supported rendering.
func ValidateOutputFormat(format string) error {
	_, err := NormalizeOutputFormat(format)
	return err
}
