// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SetsIdentityUnconditionally(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	r := New(Identity{UserID: "u1", VideoID: "v1", Title: "Pilot"}, at)

	assert.Equal(t, "u1", r.UserID)
	assert.Equal(t, "v1", r.VideoID)
	assert.Equal(t, "Pilot", r.Title)
	assert.True(t, r.Timestamp.Equal(at))
	assert.Equal(t, time.UTC, r.Timestamp.Location())
	assert.Len(t, r.ID, 36)

	assert.False(t, r.HasError())
	assert.False(t, r.HasLocation())
	assert.Nil(t, r.Bitrate)
	assert.Nil(t, r.AudioCodec)
}

func TestNew_GeneratesDistinctIDs(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		r := New(Identity{UserID: "u"}, time.Now())
		_, dup := seen[r.ID]
		require.False(t, dup, "duplicate id %s", r.ID)
		seen[r.ID] = struct{}{}
	}
}

func TestEncodeBatch_OptionalFieldsAreNull(t *testing.T) {
	r := New(Identity{UserID: "u1", VideoID: "v1", Title: "t"}, time.Unix(0, 0))
	body, err := EncodeBatch([]Record{r})
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	require.Len(t, raw, 1)

	for _, key := range []string{"bitrate", "framerate", "videoCodec", "audioCodec", "latitude", "longitude", "city", "country", "errorCode", "errorMessage"} {
		v, present := raw[0][key]
		assert.Truef(t, present, "field %q must be present", key)
		assert.Nilf(t, v, "field %q must be null", key)
	}
	assert.Equal(t, "u1", raw[0]["userId"])
	assert.Equal(t, false, raw[0]["isPlaying"])
}

func TestEncodeBatch_EmptyIsJSONArray(t *testing.T) {
	body, err := EncodeBatch(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
}

func TestDecodeBatch_PreservesOrderAndOptionalFields(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := New(Identity{UserID: "u"}, at)
	a.ErrorCode = Ptr(2001)
	a.ErrorMessage = Ptr("source error")
	b := New(Identity{UserID: "u"}, at.Add(time.Second))
	b.City = Ptr("Dhaka")

	body, err := EncodeBatch([]Record{a, b})
	require.NoError(t, err)

	got, err := DecodeBatch(body)
	require.NoError(t, err)
	if diff := cmp.Diff([]Record{a, b}, got); diff != "" {
		t.Fatalf("decoded batch mismatch (-want +got):\n%s", diff)
	}
}
