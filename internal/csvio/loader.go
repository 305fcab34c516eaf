package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/go-playground/validator/v10"

	"github.com/rhyrak/go-registrar/pkg/model"
)

// IntegrityError describes one malformed input row. It unwraps to
// model.ErrDataIntegrity.
type IntegrityError struct {
	Source string
	Row    int // 1-based line number, the header is line 1
	Field  string
	Reason string
}

func (e *IntegrityError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("%s: %s", e.Source, e.Reason)
	}
	if e.Field == "" {
		return fmt.Sprintf("%s line %d: %s", e.Source, e.Row, e.Reason)
	}
	return fmt.Sprintf("%s line %d: %s: %s", e.Source, e.Row, e.Field, e.Reason)
}

func (e *IntegrityError) Unwrap() error {
	return model.ErrDataIntegrity
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report csv column names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("csv"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("component", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseComponent(fl.Field().String())
		return ok
	})
	v.RegisterValidation("roomtype", func(fl validator.FieldLevel) bool {
		return model.RoomType(fl.Field().String()).IsKnown()
	})
	return v
}

func reader(in io.Reader, delim rune) gocsv.CSVReader {
	r := csv.NewReader(in)
	r.Comma = delim
	r.TrimLeadingSpace = true
	return r
}

// LoadCatalog parses section catalog rows. It does not validate them.
func LoadCatalog(in io.Reader, delim rune) ([]*model.CatalogRecord, error) {
	records := []*model.CatalogRecord{}
	if err := gocsv.UnmarshalCSV(reader(in, delim), &records); err != nil {
		return nil, &IntegrityError{Source: "catalog", Reason: err.Error()}
	}
	return records, nil
}

// LoadCatalogFile opens path and parses it with LoadCatalog.
func LoadCatalogFile(path string, delim rune) ([]*model.CatalogRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f, delim)
}

// LoadRooms parses room catalog rows. It does not validate them.
func LoadRooms(in io.Reader, delim rune) ([]*model.Room, error) {
	rooms := []*model.Room{}
	if err := gocsv.UnmarshalCSV(reader(in, delim), &rooms); err != nil {
		return nil, &IntegrityError{Source: "rooms", Reason: err.Error()}
	}
	for _, r := range rooms {
		r.ID = strings.TrimSpace(r.ID)
		r.Type = model.RoomType(strings.TrimSpace(string(r.Type)))
		r.Building = strings.TrimSpace(r.Building)
	}
	return rooms, nil
}

// LoadRoomsFile opens path and parses it with LoadRooms.
func LoadRoomsFile(path string, delim rune) ([]*model.Room, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rooms: %w", err)
	}
	defer f.Close()
	return LoadRooms(f, delim)
}

// ValidateCatalog checks every catalog row and returns all problems joined,
// or nil when the catalog is usable.
func ValidateCatalog(records []*model.CatalogRecord) error {
	var errs []error
	if len(records) == 0 {
		errs = append(errs, &IntegrityError{Source: "catalog", Reason: "no sections"})
	}
	for i, rec := range records {
		line := i + 2
		errs = append(errs, structErrors("catalog", line, rec)...)
		if _, ok := model.ParseComponent(rec.Component); !ok {
			continue
		}
		if _, err := rec.Capacity(); err != nil {
			errs = append(errs, &IntegrityError{Source: "catalog", Row: line, Field: "enrollment_cap", Reason: err.Error()})
		}
	}
	return errors.Join(errs...)
}

// ValidateRooms checks every room row, including duplicate room IDs.
func ValidateRooms(rooms []*model.Room) error {
	var errs []error
	if len(rooms) == 0 {
		errs = append(errs, &IntegrityError{Source: "rooms", Reason: "no rooms"})
	}
	seen := make(map[string]int, len(rooms))
	for i, r := range rooms {
		line := i + 2
		errs = append(errs, structErrors("rooms", line, r)...)
		if r.ID == "" {
			continue
		}
		if first, dup := seen[r.ID]; dup {
			errs = append(errs, &IntegrityError{Source: "rooms", Row: line, Field: "room_id", Reason: fmt.Sprintf("duplicate of line %d", first)})
			continue
		}
		seen[r.ID] = line
	}
	return errors.Join(errs...)
}

func structErrors(source string, line int, v any) []error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []error{&IntegrityError{Source: source, Row: line, Reason: err.Error()}}
	}
	out := make([]error, 0, len(ve))
	for _, fe := range ve {
		out = append(out, &IntegrityError{Source: source, Row: line, Field: fe.Field(), Reason: reason(fe)})
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing value"
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "component":
		return fmt.Sprintf("unknown component %q", fe.Value())
	case "roomtype":
		return fmt.Sprintf("unknown room type %q", fe.Value())
	}
	return "failed " + fe.Tag()
}
