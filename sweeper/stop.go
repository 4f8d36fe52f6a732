// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sweeper

import "sync/atomic"

// StopToken is a cooperative stop request. The run loop checks it once per
// iteration, before a cycle starts, so a cycle in progress always completes
// or fails before the run stops. The zero value is ready to use.
type StopToken struct {
	stopped atomic.Bool
}

// Stop requests a graceful stop. It is safe to call from any goroutine and
// more than once.
func (t *StopToken) Stop() {
	t.stopped.Store(true)
}

// Stopped reports whether a stop has been requested. A nil token is never
// stopped.
func (t *StopToken) Stopped() bool {
	return t != nil && t.stopped.Load()
}
