// Package dataset loads the static landmark collection and rejects records
// that cannot be monitored.
package dataset

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nandanugg/landmark-radar/module/core/domain"
)

type Source interface {
	Load(ctx context.Context) (*Result, error)
}

// Result holds the accepted landmarks in dataset order and every record that
// was turned away.
type Result struct {
	Landmarks []domain.Landmark
	Rejected  []RecordError
}

// RecordError identifies a rejected record by its position in the source.
type RecordError struct {
	Index int
	ID    string
	Err   error
}

func (e RecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d (id=%s): %v", e.Index, e.ID, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// Record is a landmark as read from a source, before validation. Missing
// coordinates are nil.
type Record struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Build validates records in order. Later records reusing an accepted id are
// rejected.
func Build(records []Record) *Result {
	res := &Result{Landmarks: make([]domain.Landmark, 0, len(records))}
	seen := make(map[string]struct{}, len(records))

	for i, rec := range records {
		if err := validateRecord(rec); err != nil {
			res.Rejected = append(res.Rejected, RecordError{Index: i, ID: rec.ID, Err: err})
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			res.Rejected = append(res.Rejected, RecordError{Index: i, ID: rec.ID, Err: ErrDuplicateID})
			continue
		}
		seen[rec.ID] = struct{}{}
		res.Landmarks = append(res.Landmarks, domain.Landmark{
			ID:          rec.ID,
			Name:        rec.Name,
			Description: rec.Description,
			Location:    rec.Location,
			Lat:         *rec.Latitude,
			Lon:         *rec.Longitude,
		})
	}
	return res
}

func validateRecord(rec Record) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Field() + ": " + fe.Tag()
		if fe.Param() != "" {
			msg += " " + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return &ValidationError{Fields: msgs}
}

// ValidationError lists the failed field constraints of one record.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, "; ")
}

func indexID(i int) string {
	return strconv.Itoa(i)
}
