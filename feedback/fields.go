// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/curiodata/curio-go/api"
)

// schemaValidate is the validator instance for field and question
// descriptors. Initialized once; descriptor validation is cheap and
// happens before any remote call during dataset creation.
var schemaValidate *validator.Validate

func init() {
	schemaValidate = validator.New()
}

// -----------------------------------------------------------------------------
// Field Schemas
// -----------------------------------------------------------------------------

// FieldSchema describes one content field of a dataset.
//
// Title defaults to a capitalized form of Name when left empty; use the
// typed constructors (TextField) for the common settings payloads.
type FieldSchema struct {
	// Name is the unique field identifier. Lowercase by convention.
	Name string `validate:"required"`

	// Title is the display label. Defaults to capitalized Name.
	Title string

	// Required marks fields every record must fill.
	Required bool

	// Settings is the server-side rendering/validation payload,
	// e.g. {"type": "text"}.
	Settings map[string]any `validate:"required"`
}

// TextField returns a required text field with standard settings.
func TextField(name string) FieldSchema {
	return FieldSchema{
		Name:     name,
		Required: true,
		Settings: map[string]any{"type": "text"},
	}
}

// Validate checks the descriptor's structural constraints.
func (f FieldSchema) Validate() error {
	if err := schemaValidate.Struct(f); err != nil {
		return fmt.Errorf("invalid field %q: %w", f.Name, err)
	}
	return nil
}

// normalize applies the title default.
func (f FieldSchema) normalize() FieldSchema {
	if f.Title == "" {
		f.Title = capitalize(f.Name)
	}
	return f
}

// toAPI converts to the wire shape.
func (f FieldSchema) toAPI() api.Field {
	return api.Field{
		Name:     f.Name,
		Title:    f.Title,
		Required: f.Required,
		Settings: f.Settings,
	}
}

// fieldFromAPI converts from the wire shape.
func fieldFromAPI(in api.Field) FieldSchema {
	return FieldSchema{
		Name:     in.Name,
		Title:    in.Title,
		Required: in.Required,
		Settings: in.Settings,
	}.normalize()
}

// -----------------------------------------------------------------------------
// Question Schemas
// -----------------------------------------------------------------------------

// QuestionSchema describes one annotation question of a dataset.
type QuestionSchema struct {
	// Name is the unique question identifier.
	Name string `validate:"required"`

	// Title is the display label. Defaults to capitalized Name.
	Title string

	// Description is optional helper text shown to annotators.
	Description string

	// Required marks questions every response must answer.
	Required bool

	// Settings is the server-side payload, e.g. {"type": "text"} or
	// {"type": "rating", "options": [...]}.
	Settings map[string]any `validate:"required"`
}

// TextQuestion returns a required free-text question.
func TextQuestion(name string) QuestionSchema {
	return QuestionSchema{
		Name:     name,
		Required: true,
		Settings: map[string]any{"type": "text"},
	}
}

// RatingQuestion returns a required rating question whose options are the
// given values, in order.
func RatingQuestion(name string, values []int) QuestionSchema {
	options := make([]map[string]any, 0, len(values))
	for _, v := range values {
		options = append(options, map[string]any{"value": v})
	}
	return QuestionSchema{
		Name:     name,
		Required: true,
		Settings: map[string]any{"type": "rating", "options": options},
	}
}

// Validate checks the descriptor's structural constraints.
func (q QuestionSchema) Validate() error {
	if err := schemaValidate.Struct(q); err != nil {
		return fmt.Errorf("invalid question %q: %w", q.Name, err)
	}
	return nil
}

// normalize applies the title default.
func (q QuestionSchema) normalize() QuestionSchema {
	if q.Title == "" {
		q.Title = capitalize(q.Name)
	}
	return q
}

// toAPI converts to the wire shape.
func (q QuestionSchema) toAPI() api.Question {
	return api.Question{
		Name:        q.Name,
		Title:       q.Title,
		Description: q.Description,
		Required:    q.Required,
		Settings:    q.Settings,
	}
}

// questionFromAPI converts from the wire shape.
func questionFromAPI(in api.Question) QuestionSchema {
	return QuestionSchema{
		Name:        in.Name,
		Title:       in.Title,
		Description: in.Description,
		Required:    in.Required,
		Settings:    in.Settings,
	}.normalize()
}

// capitalize upper-cases the first rune, leaving the rest untouched.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
}
