package service

import (
	"context"
	"strings"

	"github.com/photolens/photolens/infrastructure/provider"
)

// Models lists the models available on the configured provider.
type Models struct {
	provider provider.Provider
}

// NewModels creates a Models service.
func NewModels(p provider.Provider) *Models {
	return &Models{provider: p}
}

// List returns the model names the provider advertises, optionally filtered
// by a case-insensitive substring.
func (s *Models) List(ctx context.Context, filter string) ([]string, error) {
	names, err := s.provider.Models(ctx)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		return names, nil
	}

	needle := strings.ToLower(filter)
	var filtered []string
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), needle) {
			filtered = append(filtered, name)
		}
	}
	return filtered, nil
}
