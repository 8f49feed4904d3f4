// Package appid holds the promptdeck application identity.
package appid

import (
	"context"
	"strings"

	"github.com/fulmenhq/gofulmen/appidentity"
)

const (
	Vendor     = "promptdeck"
	BinaryName = "promptdeck"
	EnvPrefix  = "PROMPTDECK_"
	ConfigName = "promptdeck"
)

var identity = &appidentity.Identity{
	Vendor:      Vendor,
	BinaryName:  BinaryName,
	EnvPrefix:   EnvPrefix,
	ConfigName:  ConfigName,
	Description: "Prompt triage, planning and slide deck generation service",
}

// Get returns the application identity. The context is accepted for parity
// with gofulmen's identity loader.
func Get(_ context.Context) (*appidentity.Identity, error) {
	return identity, nil
}

// EnvPrefixFor returns the identity env prefix with a trailing underscore.
func EnvPrefixFor(id *appidentity.Identity) string {
	if id == nil || strings.TrimSpace(id.EnvPrefix) == "" {
		return EnvPrefix
	}
	prefix := id.EnvPrefix
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return prefix
}
