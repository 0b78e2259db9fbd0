// Package vault implements the vault action backed by scy encrypted resources.
package vault

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/gxl/model/types"
	"github.com/viant/scy"
	_ "github.com/viant/scy/kms/blowfish"
)

const Name = "vault"

// Service reveals and secures encrypted secret resources
type Service struct {
	scyService *scy.Service
	fs         afs.Service
}

// New creates a new vault service
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{scyService: scy.New(), fs: fs}
}

// Name returns the service Name
func (s *Service) Name() string {
	return Name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "reveal",
			Description: "Decrypts a secret resource into a secret global.",
			Input:       reflect.TypeOf(&RevealInput{}),
			Output:      reflect.TypeOf(&RevealOutput{}),
			Default:     "url",
		},
		{
			Name:        "secure",
			Description: "Encrypts a plain resource into dst.",
			Input:       reflect.TypeOf(&SecureInput{}),
			Output:      reflect.TypeOf(&SecureOutput{}),
			Default:     "url",
			Effect:      true,
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "secure":
		return s.secure, nil
	case "reveal":
		return s.reveal, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

// secure handles secret encryption operations
func (s *Service) secure(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SecureInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SecureOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Secure(ctx, input, output)
}

// reveal handles secret decryption operations
func (s *Service) reveal(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*RevealInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*RevealOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Reveal(ctx, input, output)
}
