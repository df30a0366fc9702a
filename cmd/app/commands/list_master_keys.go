package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	cryptoService "github.com/allisson/sealedrecords/internal/crypto/service"
)

type masterKeyListing struct {
	Versions      []uint `json:"versions"`
	LatestVersion uint   `json:"latestVersion"`
	KMS           bool   `json:"kms"`
}

// RunListMasterKeys validates the configured MASTER_KEY* entries and prints the versions
// they define. Key material is never printed.
func RunListMasterKeys(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	writer io.Writer,
	kmsKeyURI string,
	masterKeys map[string]string,
	format string,
) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	registry, err := loadMasterKeyRegistry(ctx, kmsService, kmsKeyURI, masterKeys)
	if err != nil {
		return fmt.Errorf("failed to load master keys: %w", err)
	}
	defer registry.Close()

	listing := masterKeyListing{
		Versions:      registry.Versions(),
		LatestVersion: registry.LatestVersion(),
		KMS:           kmsKeyURI != "",
	}

	if format == "json" {
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(listing)
	}

	for _, version := range listing.Versions {
		marker := ""
		if version == listing.LatestVersion {
			marker = " (latest)"
		}
		_, _ = fmt.Fprintf(writer, "v%d%s\n", version, marker)
	}
	return nil
}
