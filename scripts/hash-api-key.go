//go:build ignore

// Prints the SHA-256 hash of an API key for the STAFF_API_KEY_HASH setting.
//
// Usage: go run scripts/hash-api-key.go <key>
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: go run scripts/hash-api-key.go <key>")
		os.Exit(1)
	}

	hash := sha256.Sum256([]byte(os.Args[1]))
	fmt.Println(hex.EncodeToString(hash[:]))
}
