// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWindow(t *testing.T, now uint64) *Window {
	t.Helper()
	return NewWindow(func() time.Time {
		return time.Unix(int64(now), 0)
	})
}

func TestWindowUnsetIsClosed(t *testing.T) {
	w := newTestWindow(t, 1000)
	assert.False(t, w.IsSet())
	assert.False(t, w.IsOpen())
}

func TestWindowSetValidation(t *testing.T) {
	w := newTestWindow(t, 1000)

	testCases := []struct {
		name  string
		start uint64
		end   uint64
	}{
		{name: "start equals end", start: 500, end: 500},
		{name: "start after end", start: 600, end: 500},
		{name: "end in past", start: 100, end: 900},
		{name: "end equals now", start: 100, end: 1000},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := w.Set(tc.start, tc.end)
			assert.ErrorIs(t, err, ErrInvalidPeriod)
			assert.False(t, w.IsSet())
		})
	}

	require.NoError(t, w.Set(900, 1100))
	start, end := w.Bounds()
	assert.Equal(t, uint64(900), start)
	assert.Equal(t, uint64(1100), end)
	assert.True(t, w.IsSet())
}

func TestWindowBoundaries(t *testing.T) {
	testCases := []struct {
		name string
		now  uint64
		open bool
	}{
		{name: "before start", now: 999, open: false},
		{name: "at start", now: 1000, open: true},
		{name: "inside", now: 1500, open: true},
		{name: "at end", now: 2000, open: false},
		{name: "after end", now: 2001, open: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWindow(t, tc.now)
			w.Restore(1000, 2000)
			assert.Equal(t, tc.open, w.IsOpen())
		})
	}
}

func TestWindowRestoreSkipsValidation(t *testing.T) {
	// Restoring a window that already closed must succeed
	w := newTestWindow(t, 5000)
	w.Restore(1000, 2000)
	assert.True(t, w.IsSet())
	assert.False(t, w.IsOpen())
}
