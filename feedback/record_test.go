// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package feedback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curiodata/curio-go/api"
)

func TestDefaultResponse(t *testing.T) {
	r := DefaultResponse()
	assert.NotNil(t, r.Values, "values must be an empty map, not nil")
	assert.Empty(t, r.Values)
	assert.Equal(t, StatusSubmitted, r.Status)
}

func TestRecordSubmission_Response(t *testing.T) {
	t.Run("nil gets default", func(t *testing.T) {
		sub := RecordSubmission{Fields: FieldMap{"text": "a"}}
		resp, err := sub.response()
		require.NoError(t, err)
		assert.Equal(t, DefaultResponse(), resp)
	})

	t.Run("empty status defaults to submitted", func(t *testing.T) {
		sub := RecordSubmission{
			Fields:   FieldMap{"text": "a"},
			Response: &Response{Values: map[string]ResponseValue{"q": {Value: "yes"}}},
		}
		resp, err := sub.response()
		require.NoError(t, err)
		assert.Equal(t, StatusSubmitted, resp.Status)
		assert.Equal(t, "yes", resp.Values["q"].Value)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		sub := RecordSubmission{
			Fields:   FieldMap{"text": "a"},
			Response: &Response{Status: "draft"},
		}
		_, err := sub.response()
		assert.Error(t, err)
	})
}

func TestMaterializeRecord(t *testing.T) {
	v, err := InferValidator(FieldMap{"text": "a", "rating": 3})
	require.NoError(t, err)

	now := time.Now().UTC()
	item := api.RecordItem{
		ID: "rec-1",
		// Values as a JSON decoder would deliver them.
		Fields:     map[string]any{"text": "b", "rating": float64(4)},
		Responses:  []api.Response{{Values: map[string]api.ResponseValue{"q": {Value: "ok"}}, Status: "submitted"}},
		ExternalID: "ext-1",
		InsertedAt: now,
		UpdatedAt:  now,
	}

	got, err := materializeRecord(item, v)
	require.NoError(t, err)
	assert.Equal(t, "rec-1", got.ID)
	assert.Equal(t, int64(4), got.Fields["rating"])
	assert.Equal(t, "ext-1", got.ExternalID)
	require.Len(t, got.Responses, 1)
	assert.Equal(t, StatusSubmitted, got.Responses[0].Status)
	assert.Equal(t, "ok", got.Responses[0].Values["q"].Value)
}

func TestMaterializeRecord_SchemaMismatch(t *testing.T) {
	v, err := InferValidator(FieldMap{"text": "a"})
	require.NoError(t, err)

	_, err = materializeRecord(api.RecordItem{
		ID:     "rec-1",
		Fields: map[string]any{"other": "b"},
	}, v)
	assert.True(t, IsSchemaError(err))
}
