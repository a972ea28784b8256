// Package includes embeds the license texts and the default README
// template so they are available no matter where the binary runs.
// Both are themselves render targets: they contain placeholders for
// the year, author, project, and version.
package includes

import (
	_ "embed"

	"github.com/arthur-debert/pi/pkg/config"
)

//go:embed licenses/BSD3
var bsd3 string

//go:embed licenses/BSD
var bsd string

//go:embed licenses/GPL3
var gpl3 string

//go:embed licenses/MIT
var mit string

//go:embed licenses/AllRightsReserved
var allRightsReserved string

//go:embed README.md
var readme string

// LicenseText returns the bundled template for the given license, or
// "" when the license is unset
func LicenseText(license config.License) string {
	switch license {
	case config.LicenseBSD3:
		return bsd3
	case config.LicenseBSD:
		return bsd
	case config.LicenseGPL3:
		return gpl3
	case config.LicenseMIT:
		return mit
	case config.LicenseAllRightsReserved:
		return allRightsReserved
	default:
		return ""
	}
}

// ReadmeText returns the bundled README template
func ReadmeText() string {
	return readme
}
