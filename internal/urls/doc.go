// Package urls holds the documentation links printed by apdefaults, so they
// can be updated in one place.
//
// Usage:
//
//	import "github.com/muurk/apdefaults/internal/urls"
//
//	fmt.Printf("See: %s\n", urls.BuildingFirmware)
package urls
