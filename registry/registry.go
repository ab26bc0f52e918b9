// Package registry maps step names used in recipes to a closed set of
// transform and filter operations.
package registry

import (
	"context"
	"fmt"

	"github.com/kbukum/etlkit/entity"
	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/pipeline"
	"github.com/kbukum/etlkit/record"
)

// Transform is a named transform step.
type Transform int

const (
	// GenerateUser maps a record to a User. It applies to record pipelines only.
	GenerateUser Transform = iota + 1
	// Capitalize uppercases the whole first name.
	Capitalize
	// Lowercase lowercases the whole first name.
	Lowercase
)

// Filter is a named filter step.
type Filter int

const (
	// IsValid keeps users that pass validation.
	IsValid Filter = iota + 1
)

// Element kinds reported in contract violations.
const (
	elementRecord = "record"
	elementUser   = "user"
)

var transformNames = map[string]Transform{
	"generate_user": GenerateUser,
	"capitalize":    Capitalize,
	"lowercase":     Lowercase,
}

var filterNames = map[string]Filter{
	"is_valid": IsValid,
}

// LookupTransform resolves a transform step name.
func LookupTransform(name string) (Transform, bool) {
	t, ok := transformNames[name]
	return t, ok
}

// LookupFilter resolves a filter step name.
func LookupFilter(name string) (Filter, bool) {
	f, ok := filterNames[name]
	return f, ok
}

func (t Transform) String() string {
	for name, v := range transformNames {
		if v == t {
			return name
		}
	}
	return fmt.Sprintf("transform(%d)", int(t))
}

func (f Filter) String() string {
	for name, v := range filterNames {
		if v == f {
			return name
		}
	}
	return fmt.Sprintf("filter(%d)", int(f))
}

// AppliesToRecords reports whether t converts records into users.
func (t Transform) AppliesToRecords() bool {
	return t == GenerateUser
}

// CheckRecords returns the contract violation ApplyToRecords would
// report, or nil.
func (t Transform) CheckRecords() error {
	if !t.AppliesToRecords() {
		return errors.ContractViolation(t.String(), elementRecord)
	}
	return nil
}

// CheckUsers returns the contract violation ApplyToUsers would report,
// or nil.
func (t Transform) CheckUsers() error {
	_, err := t.userFunc()
	return err
}

// userFunc returns the element function of a user transform.
func (t Transform) userFunc() (func(entity.User) entity.User, error) {
	switch t {
	case Capitalize:
		return entity.UppercaseFirstName, nil
	case Lowercase:
		return entity.LowercaseFirstName, nil
	default:
		return nil, errors.ContractViolation(t.String(), elementUser)
	}
}

// ApplyToRecords converts a record batch into a user batch. Only
// GenerateUser is accepted; any other transform is a contract violation.
func (t Transform) ApplyToRecords(ctx context.Context, b pipeline.Batch[record.Record]) (pipeline.Batch[entity.User], error) {
	if err := t.CheckRecords(); err != nil {
		return pipeline.Batch[entity.User]{}, err
	}
	return pipeline.Transform(ctx, b, entity.FromRecord)
}

// ApplyToUsers runs a user transform. GenerateUser is a contract violation.
func (t Transform) ApplyToUsers(ctx context.Context, b pipeline.Batch[entity.User]) (pipeline.Batch[entity.User], error) {
	fn, err := t.userFunc()
	if err != nil {
		return pipeline.Batch[entity.User]{}, err
	}
	return pipeline.Transform(ctx, b, fn)
}

// ApplyToRecordStream is the streaming form of ApplyToRecords.
func (t Transform) ApplyToRecordStream(s pipeline.Stream[record.Record]) (pipeline.Stream[entity.User], error) {
	if err := t.CheckRecords(); err != nil {
		return pipeline.Stream[entity.User]{}, err
	}
	return pipeline.TransformStream(s, entity.FromRecord), nil
}

// ApplyToUserStream is the streaming form of ApplyToUsers.
func (t Transform) ApplyToUserStream(s pipeline.Stream[entity.User]) (pipeline.Stream[entity.User], error) {
	fn, err := t.userFunc()
	if err != nil {
		return pipeline.Stream[entity.User]{}, err
	}
	return pipeline.TransformStream(s, fn), nil
}

// ApplyToUsers runs the filter over a user batch. Rejected users are
// recorded in the stats errors.
func (f Filter) ApplyToUsers(ctx context.Context, b pipeline.Batch[entity.User]) (pipeline.Batch[entity.User], error) {
	check, err := f.check()
	if err != nil {
		return pipeline.Batch[entity.User]{}, err
	}
	return b.FilterValidate(ctx, check)
}

// ApplyToUserStream runs the filter over a user stream. Rejections are
// appended to errs when it is not nil.
func (f Filter) ApplyToUserStream(s pipeline.Stream[entity.User], errs *pipeline.ErrorLog) (pipeline.Stream[entity.User], error) {
	check, err := f.check()
	if err != nil {
		return pipeline.Stream[entity.User]{}, err
	}
	return s.FilterValidate(check, errs), nil
}

func (f Filter) check() (func(entity.User) error, error) {
	switch f {
	case IsValid:
		return validUser, nil
	default:
		return nil, errors.ContractViolation(f.String(), elementUser)
	}
}

func validUser(u entity.User) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("user %q rejected: %w", u.Username, err)
	}
	return nil
}
