package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// calc_webhook_signature.go - Utility to calculate the X-Presenca-Signature
// header for a webhook payload
//
// Usage:
//   go run scripts/calc_webhook_signature.go <secret> < payload.json
//
// Example:
//   echo -n '{"type":"fraud.detected"}' | go run scripts/calc_webhook_signature.go mysecret
//
// Output:
//   sha256=4f1c0a...

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run calc_webhook_signature.go <secret> < payload")
		fmt.Println("")
		fmt.Println("Example:")
		fmt.Println("  echo -n '{\"type\":\"fraud.detected\"}' | go run scripts/calc_webhook_signature.go mysecret")
		os.Exit(1)
	}

	secret := os.Args[1]

	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read payload: %v\n", err)
		os.Exit(1)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	fmt.Printf("sha256=%s\n", signature)
}
