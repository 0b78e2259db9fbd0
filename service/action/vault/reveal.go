package vault

import (
	"context"
	"fmt"

	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/gxl/runtime/execution"
	"github.com/viant/scy"
	"github.com/viant/scy/cred"
	"github.com/viant/toolbox"
)

// DefaultKey is used when no key is given.
const DefaultKey = "blowfish://default"

// RevealInput defines parameters for revealing secrets
type RevealInput struct {
	URL    string `json:"url,omitempty" description:"encrypted secret location"`
	Key    string `json:"key,omitempty" description:"encryption key, e.g. blowfish://default"`
	Var    string `json:"var,omitempty" description:"global receiving the secret"`
	Target string `json:"target,omitempty" description:"credential type: raw, basic, key, generic"`
}

// RevealOutput reports where the secret went; the secret itself is never part of the output.
type RevealOutput struct {
	Var  string   `json:"var,omitempty"`
	Keys []string `json:"keys,omitempty"`
}

// Reveal decrypts a secret into input.Var, flagging every leaf secret.
func (s *Service) Reveal(ctx context.Context, input *RevealInput, output *RevealOutput) error {
	if input.URL == "" || input.Var == "" {
		return types.NewArgsError("vault.reveal requires url and var")
	}
	session := execution.SessionOf(ctx)
	location := session.Path(input.URL)
	key := input.Key
	if key == "" {
		key = DefaultKey
	}
	var target interface{}
	if input.Target != "" && input.Target != "raw" {
		targetType, err := cred.TargetType(input.Target)
		if err != nil {
			return types.NewArgsError("invalid target type %q: %v", input.Target, err)
		}
		if targetType != nil {
			target = targetType
		}
	}
	resource := scy.NewResource(target, location, key)
	secret, err := s.scyService.Load(ctx, resource)
	if err != nil {
		return types.NewIoError(fmt.Sprintf("failed to load secret from %s", location), err)
	}
	var revealed value.Value
	if !secret.IsPlain && secret.Target != nil {
		aMap := map[string]interface{}{}
		if err := toolbox.DefaultConverter.AssignConverted(&aMap, secret.Target); err != nil {
			return types.NewArgsError("failed to convert secret data: %v", err)
		}
		revealed = value.From(toolbox.DeleteEmptyKeys(aMap))
		output.Keys = revealed.Object.Keys()
	} else {
		revealed = value.String(secret.String())
	}
	execution.VarsOf(ctx).SetGlobal(input.Var, revealed.AsSecret())
	output.Var = input.Var
	return nil
}
