package rpc

import (
	"fmt"
	"strings"

	"github.com/spooky-finn/cryptobridge/domain"
	gen "github.com/spooky-finn/cryptobridge/gen"
)

type ValidationServiceConfig struct {
	AvailableProviders []string
}

type ValidationService struct {
	config *ValidationServiceConfig
}

func NewValidationService(config *ValidationServiceConfig) *ValidationService {
	return &ValidationService{
		config: config,
	}
}

func (s *ValidationService) IsSupportedProvider(provider string) bool {
	provider = strings.ToLower(strings.TrimSpace(provider))
	for _, p := range s.config.AvailableProviders {
		if p == provider {
			return true
		}
	}
	return false
}

// ValidateRequest checks the request shape. Depth and market syntax are left to the router.
func (s *ValidationService) ValidateRequest(in *gen.GetOrderBookSnapshotRequest) error {
	switch {
	case strings.TrimSpace(in.GetProvider()) == "":
		return fmt.Errorf("%w: provider is required", domain.ErrInvalidArgument)
	case strings.TrimSpace(in.GetMarket()) == "":
		return fmt.Errorf("%w: market is required", domain.ErrInvalidArgument)
	case strings.TrimSpace(in.GetMaxDepth()) == "":
		return fmt.Errorf("%w: maxDepth is required", domain.ErrInvalidArgument)
	}

	if !s.IsSupportedProvider(in.GetProvider()) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownProvider, in.GetProvider())
	}
	return nil
}
