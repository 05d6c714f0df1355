package session

import (
	"encoding/json"
	"errors"
	"strings"
)

// Codec serializes the principal to the text persisted under PrincipalKey.
type Codec[P any] interface {
	Encode(p P) (string, error)
	Decode(s string) (P, error)
}

// jsonCodec is the default Codec.
type jsonCodec[P any] struct{}

func (jsonCodec[P]) Encode(p P) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", errors.Join(ErrEncode, err)
	}
	return string(data), nil
}

// Decode rejects a JSON null so an empty principal is never restored.
func (jsonCodec[P]) Decode(s string) (P, error) {
	var p P
	if strings.TrimSpace(s) == "null" {
		return p, errors.Join(ErrDecode, ErrNilPrincipal)
	}
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return p, errors.Join(ErrDecode, err)
	}
	return p, nil
}
