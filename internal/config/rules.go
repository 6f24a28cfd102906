package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/core"
)

// ErrInvalidRules is returned when the rules file cannot be parsed or validated.
var ErrInvalidRules = errors.New("invalid rules file")

// Rules is the optional field-cleaning configuration.
//
// Example:
//
//	columns:
//	  email: email_address
//	  revenue: revenue_usd
//	date_layouts: ["02.01.2006"]
//	null_tokens: ["", "N/A", "-"]
type Rules struct {
	Columns ColumnRules `yaml:"columns"`

	// DateLayouts are Go time layouts tried before the built-in ones.
	DateLayouts []string `yaml:"date_layouts" validate:"dive,required"`

	// NullTokens replaces the loader's default set of cell values read as null.
	// Leave unset to keep the defaults.
	NullTokens []string `yaml:"null_tokens"`

	// NotesSeparator joins distinct notes of merged rows.
	NotesSeparator string `yaml:"notes_separator" validate:"required"`
}

// ColumnRules names the columns the cleaner gives special treatment.
// Names are matched after header normalization, so "Full Name" and
// "full_name" are equivalent, and no two roles may share a column.
type ColumnRules struct {
	FullName  string `yaml:"full_name" validate:"required"`
	Email     string `yaml:"email" validate:"required"`
	StartDate string `yaml:"start_date" validate:"required"`
	Revenue   string `yaml:"revenue" validate:"required"`
	Region    string `yaml:"region" validate:"required"`
	Notes     string `yaml:"notes" validate:"required"`
}

// DefaultRules returns the rules used when no rules file is given.
func DefaultRules() Rules {
	return Rules{
		Columns: ColumnRules{
			FullName:  "full_name",
			Email:     "e-mail_address",
			StartDate: "start_date",
			Revenue:   "revenue($)",
			Region:    "region",
			Notes:     "notes",
		},
		NotesSeparator: "; ",
	}
}

// LoadRules reads a YAML rules file. Keys missing from the file keep their
// default values; unknown keys are rejected.
func LoadRules(fs afero.Fs, path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rules); err != nil && !errors.Is(err, io.EOF) {
		return Rules{}, fmt.Errorf("%w: %s: %v", ErrInvalidRules, path, err)
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, fmt.Errorf("%w: %s: %v", ErrInvalidRules, path, err)
	}

	return rules, nil
}

// Validate checks that every column name is set, that the names are distinct
// after header normalization and that layouts are non-empty.
func (r Rules) Validate() error {
	return formatValidation(structValidator().Struct(r))
}

// validateColumnRules reports every column role whose normalized name is
// already taken by an earlier role.
func validateColumnRules(sl validator.StructLevel) {
	cols := sl.Current().Interface().(ColumnRules)
	roles := []struct {
		field, key, name string
	}{
		{"FullName", "full_name", cols.FullName},
		{"Email", "email", cols.Email},
		{"StartDate", "start_date", cols.StartDate},
		{"Revenue", "revenue", cols.Revenue},
		{"Region", "region", cols.Region},
		{"Notes", "notes", cols.Notes},
	}

	taken := make(map[string]string, len(roles))
	for _, role := range roles {
		normalized := core.NormalizeColumnName(role.name)
		if normalized == "" {
			continue
		}
		if prev, ok := taken[normalized]; ok {
			sl.ReportError(role.name, role.key, role.field, "unique_column", prev)
			continue
		}
		taken[normalized] = role.key
	}
}
