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
	"errors"
	"time"
)

var ErrInvalidPeriod = errors.New(
	"voting period start must precede end, with end in the future",
)

// Window is the voting period gate. Bounds are Unix timestamps in seconds;
// the window is half-open, so voting opens exactly at start and closes
// exactly at end. Zero bounds mean the period was never set and the gate
// stays closed.
//
// Window is not safe for concurrent use. Callers serialize access behind
// the election lock.
type Window struct {
	start   uint64
	end     uint64
	nowFunc func() time.Time
}

func NewWindow(nowFunc func() time.Time) *Window {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &Window{
		nowFunc: nowFunc,
	}
}

// Set replaces the window bounds. The start must precede the end and the
// end must be in the future.
func (w *Window) Set(start, end uint64) error {
	if start >= end {
		return ErrInvalidPeriod
	}
	now := w.nowFunc().Unix()
	if now >= 0 && end <= uint64(now) {
		return ErrInvalidPeriod
	}
	w.start = start
	w.end = end
	return nil
}

// Restore replaces the window bounds without validation, e.g. when loading
// persisted state after the window already closed.
func (w *Window) Restore(start, end uint64) {
	w.start = start
	w.end = end
}

func (w *Window) Bounds() (uint64, uint64) {
	return w.start, w.end
}

func (w *Window) IsSet() bool {
	return w.start != 0 || w.end != 0
}

// IsOpen reports whether the current time falls inside the window.
func (w *Window) IsOpen() bool {
	now := w.nowFunc().Unix()
	if now < 0 {
		return false
	}
	unixNow := uint64(now)
	return w.start != 0 && w.start <= unixNow && unixNow < w.end
}
