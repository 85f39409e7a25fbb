// Package action defines the closed set of action kinds,
// their HTTP methods and the notification type tags dispatched for them.
package action

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnknownKind is returned for a kind that is not part of the enumeration.
var ErrUnknownKind = errors.New("unknown action kind")

// Kind is a category of operation performed on a resource.
type Kind string

const (
	Load           = Kind("LOAD")
	LoadCollection = Kind("LOAD_COLLECTION")
	Create         = Kind("CREATE")
	Update         = Kind("UPDATE")
	Destroy        = Kind("DESTROY")
)

var methods = map[Kind]string{ //nolint:gochecknoglobals
	Load:           http.MethodGet,
	LoadCollection: http.MethodGet,
	Create:         http.MethodPost,
	Update:         http.MethodPut,
	Destroy:        http.MethodDelete,
}

// Kinds returns all kinds in a stable order.
func Kinds() []Kind {
	return []Kind{Load, LoadCollection, Create, Update, Destroy}
}

// ParseKind converts a symbolic name, for example "LOAD_COLLECTION", to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, found := methods[k]; !found {
		return "", fmt.Errorf(`%w "%s"`, ErrUnknownKind, s)
	}
	return k, nil
}

// Method returns the HTTP method inferred from the kind.
func (k Kind) Method() (string, error) {
	if m, found := methods[k]; found {
		return m, nil
	}
	return "", fmt.Errorf(`%w "%s"`, ErrUnknownKind, string(k))
}

// Validate returns ErrUnknownKind if the kind has no method mapping.
func (k Kind) Validate() error {
	_, err := k.Method()
	return err
}

func (k Kind) String() string {
	return string(k)
}
