package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/runtime/execution"
	"github.com/viant/gxl/service/transaction"
	"github.com/viant/scy"
	"github.com/viant/scy/cred"
)

// SecureInput defines parameters for securing secrets
type SecureInput struct {
	URL     string `json:"url,omitempty" description:"plain secret location, used when content is empty"`
	Content string `json:"content,omitempty" description:"raw content to encrypt"`
	Dst     string `json:"dst,omitempty" description:"encrypted secret destination"`
	Key     string `json:"key,omitempty" description:"encryption key, e.g. blowfish://default"`
	Target  string `json:"target,omitempty" description:"credential type: raw, basic, key, generic"`
}

// SecureOutput contains results from encrypting a secret
type SecureOutput struct {
	Dst string `json:"dst,omitempty"`
}

// Secure encrypts and stores a secret
func (s *Service) Secure(ctx context.Context, input *SecureInput, output *SecureOutput) error {
	if input.Dst == "" {
		return types.NewArgsError("vault.secure requires dst")
	}
	session := execution.SessionOf(ctx)
	var data []byte
	var err error
	switch {
	case input.Content != "":
		data = []byte(input.Content)
	case input.URL != "":
		location := session.Path(input.URL)
		if data, err = s.fs.DownloadWithURL(ctx, location); err != nil {
			return types.NewIoError(fmt.Sprintf("failed to read %s", location), err)
		}
	default:
		return types.NewArgsError("vault.secure requires url or content")
	}
	key := input.Key
	if key == "" {
		key = DefaultKey
	}
	dst := session.Path(input.Dst)

	var targetType reflect.Type
	if input.Target != "" && input.Target != "raw" {
		if targetType, err = cred.TargetType(input.Target); err != nil {
			return types.NewArgsError("invalid target type %q: %v", input.Target, err)
		}
	}
	var secret *scy.Secret
	if targetType != nil {
		instance := reflect.New(targetType).Interface()
		if err := json.Unmarshal(data, instance); err != nil {
			return types.NewArgsError("failed to unmarshal data to target type %s: %v", input.Target, err)
		}
		secret = scy.NewSecret(instance, scy.NewResource(targetType, dst, key))
	} else {
		secret = scy.NewSecret(string(data), scy.NewResource(nil, dst, key))
	}

	hold, err := transaction.Snapshot(ctx, s.fs, dst)
	if err != nil {
		return types.NewIoError("failed to snapshot "+dst, err)
	}
	if err := s.scyService.Store(ctx, secret); err != nil {
		return types.NewIoError("failed to store encrypted secret", err)
	}
	session.Hold(hold)
	output.Dst = dst
	return nil
}
