package action

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Type is a notification type tag understood by the store, for example "LOAD_STARTED".
type Type string

func (t Type) String() string {
	return string(t)
}

// Types is the pair of tags dispatched for one kind.
type Types struct {
	Started  Type
	Finished Type
}

// TypeTable maps each Kind to its notification tags.
// The table is validated once, when a dispatcher is created, so a missing tag
// is a configuration error and never an empty tag at call time.
type TypeTable map[Kind]Types

// DefaultTypes returns the "<KIND>_STARTED" / "<KIND>_FINISHED" table.
func DefaultTypes() TypeTable {
	out := make(TypeTable)
	for _, k := range Kinds() {
		out[k] = Types{
			Started:  Type(string(k) + "_STARTED"),
			Finished: Type(string(k) + "_FINISHED"),
		}
	}
	return out
}

// WithPrefix returns a clone of the table with all tags prefixed, for example "users/".
func (t TypeTable) WithPrefix(prefix string) TypeTable {
	out := make(TypeTable, len(t))
	for k, v := range t {
		out[k] = Types{
			Started:  Type(prefix + string(v.Started)),
			Finished: Type(prefix + string(v.Finished)),
		}
	}
	return out
}

// Lookup returns tags for the kind.
func (t TypeTable) Lookup(k Kind) (Types, error) {
	v, found := t[k]
	if !found || v.Started == "" || v.Finished == "" {
		return Types{}, fmt.Errorf(`%w "%s": no notification types`, ErrUnknownKind, string(k))
	}
	return v, nil
}

// Validate checks that every kind has a method and both tags,
// and that the table contains no kind outside the enumeration.
func (t TypeTable) Validate() error {
	var err *multierror.Error

	for _, k := range Kinds() {
		v, found := t[k]
		switch {
		case !found:
			err = multierror.Append(err, fmt.Errorf(`kind "%s": types are not defined`, k))
		case v.Started == "":
			err = multierror.Append(err, fmt.Errorf(`kind "%s": started type is empty`, k))
		case v.Finished == "":
			err = multierror.Append(err, fmt.Errorf(`kind "%s": finished type is empty`, k))
		}
	}

	// Sort extra kinds, so the error is deterministic
	var extra []string
	for k := range t {
		if k.Validate() != nil {
			extra = append(extra, string(k))
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		err = multierror.Append(err, fmt.Errorf(`%w "%s"`, ErrUnknownKind, k))
	}

	return err.ErrorOrNil()
}
