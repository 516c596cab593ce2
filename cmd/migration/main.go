// Command migration applies the gridiron schema. Migrations are read from the
// binary unless MIGRATIONS_DIR points at a directory on disk.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
