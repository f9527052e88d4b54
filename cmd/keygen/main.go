// AngelaMos | 2026
// main.go

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/codeclash-gg/backend/internal/auth"
)

// keygen writes the ES256 signing key pair the API loads at boot. It
// takes plain paths instead of the config file so keys can be minted
// before any of the backing services are configured.
func main() {
	privatePath := flag.String(
		"private",
		"keys/private.pem",
		"where to write the private signing key",
	)
	publicPath := flag.String(
		"public",
		"keys/public.pem",
		"where to write the public verification key",
	)
	force := flag.Bool("force", false, "replace keys that already exist")
	flag.Parse()

	if err := run(*privatePath, *publicPath, *force); err != nil {
		slog.Error("key generation failed", "error", err)
		os.Exit(1)
	}
}

func run(privatePath, publicPath string, force bool) error {
	if !force {
		if _, err := os.Stat(privatePath); err == nil {
			return fmt.Errorf(
				"%s already exists, pass -force to replace it",
				privatePath,
			)
		}
	}

	for _, dir := range []string{
		filepath.Dir(privatePath),
		filepath.Dir(publicPath),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create key directory: %w", err)
		}
	}

	if err := auth.GenerateKeyPair(privatePath, publicPath); err != nil {
		return err
	}

	slog.Info("signing keys written",
		"private", privatePath,
		"public", publicPath,
	)
	return nil
}
