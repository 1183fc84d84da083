// Command poifetch looks up candidate street addresses for a point across
// several reverse-geocoding services and merges a chosen candidate into a
// place record.
//
// Usage:
//
//	poifetch lookup --lon 30.52 --lat 50.45
//	poifetch apply --lon 30.52 --lat 50.45 --id venue-1 --street "вул. Хрещатик"
//	poifetch serve
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
