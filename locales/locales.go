// Package locales embeds the translation files used for API error messages.
package locales

import (
	"embed"
)

//go:embed *.yaml
var fsLocales embed.FS

// FS returns the embedded locale files
func FS() embed.FS {
	return fsLocales
}
