// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextField(t *testing.T) {
	f := TextField("prompt")
	assert.Equal(t, "prompt", f.Name)
	assert.True(t, f.Required)
	assert.Equal(t, map[string]any{"type": "text"}, f.Settings)
	require.NoError(t, f.Validate())
}

func TestFieldSchema_Validate(t *testing.T) {
	tests := []struct {
		name    string
		field   FieldSchema
		wantErr bool
	}{
		{"valid", TextField("prompt"), false},
		{"missing name", FieldSchema{Settings: map[string]any{"type": "text"}}, true},
		{"missing settings", FieldSchema{Name: "prompt"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.field.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFieldSchema_TitleDefault(t *testing.T) {
	f := TextField("user_prompt").normalize()
	assert.Equal(t, "User_prompt", f.Title)

	withTitle := FieldSchema{Name: "x", Title: "Custom", Settings: map[string]any{"type": "text"}}
	assert.Equal(t, "Custom", withTitle.normalize().Title)
}

func TestTextQuestion(t *testing.T) {
	q := TextQuestion("summary")
	assert.True(t, q.Required)
	assert.Equal(t, map[string]any{"type": "text"}, q.Settings)
	require.NoError(t, q.Validate())
}

func TestRatingQuestion(t *testing.T) {
	q := RatingQuestion("quality", []int{1, 2, 3})
	require.NoError(t, q.Validate())
	assert.Equal(t, "rating", q.Settings["type"])

	options, ok := q.Settings["options"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, options, 3)
	for i, want := range []int{1, 2, 3} {
		assert.Equal(t, want, options[i]["value"])
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"prompt", "Prompt"},
		{"USER", "User"},
		{"a", "A"},
		{"über", "Über"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, capitalize(tt.in), "capitalize(%q)", tt.in)
	}
}
