// Command gridiron loads nflverse data into Postgres and serves the derived
// statistics.
//
// Usage:
//
//	gridiron load --season 2023 --season 2024
//	gridiron load --season 2024 --kinds plays
//	gridiron status
//	gridiron leaders --season 2024 --role passer --min 200 --limit 10
//	gridiron efficiency --season 2024 --team KC
//	gridiron features --season 2024 --home KC --away BAL --as-of 2024-09-05
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
