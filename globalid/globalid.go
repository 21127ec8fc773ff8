// Package globalid encodes and resolves the opaque node ids exposed by the
// GraphQL API: base64("<TypeName>:<uuid>").
package globalid

import (
	"strings"

	"github.com/google/uuid"
	"github.com/graphql-go/relay"
)

const (
	CustomerType  = "CustomerType"
	ProductType   = "ProductType"
	OrderType     = "OrderType"
	OrderItemType = "OrderItemType"
)

// Status tags the outcome of resolving a reference.
type Status int

const (
	Found Status = iota
	Malformed
	WrongType
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Malformed:
		return "malformed"
	case WrongType:
		return "wrong_type"
	default:
		return "unknown"
	}
}

// Result of Resolve. ID is only meaningful when Status is Found.
type Result struct {
	Status Status
	Type   string
	ID     uuid.UUID
}

func (r Result) OK() bool { return r.Status == Found }

// Encode returns the global id of an entity.
func Encode(typeName string, id uuid.UUID) string {
	return relay.ToGlobalID(typeName, id.String())
}

// Resolve decodes ref and checks it names an entity of expectedType.
// Resolve never touches storage; existence is the caller's concern.
func Resolve(ref, expectedType string) Result {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Result{Status: Malformed}
	}
	decoded := relay.FromGlobalID(ref)
	if decoded == nil || decoded.Type == "" || decoded.ID == "" {
		return Result{Status: Malformed}
	}
	if decoded.Type != expectedType {
		return Result{Status: WrongType, Type: decoded.Type}
	}
	id, err := uuid.Parse(decoded.ID)
	if err != nil {
		return Result{Status: Malformed, Type: decoded.Type}
	}
	return Result{Status: Found, Type: decoded.Type, ID: id}
}
