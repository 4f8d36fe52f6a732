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

package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryString(t *testing.T) {
	sel := DefaultSelectors()
	assert.Equal(t, `span "Select"`, sel.SelectMode.String())
	assert.Equal(t, `span "Delete" ^[role="button"]`, sel.Delete.String())
	assert.Equal(t, `[role="dialog"] button "Delete"`, sel.Confirm.String())
}

func TestSelectorsValidate(t *testing.T) {
	require.NoError(t, DefaultSelectors().Validate())

	sel := DefaultSelectors()
	sel.Confirm.Selector = ""
	assert.ErrorContains(t, sel.Validate(), "selectors.confirm")
}

func TestNewLocator(t *testing.T) {
	l, err := NewLocator(DefaultSelectors(), "")
	require.NoError(t, err)
	assert.Equal(t, PointerCDP, l.pointer)

	l, err = NewLocator(DefaultSelectors(), PointerScript)
	require.NoError(t, err)
	assert.Equal(t, PointerScript, l.pointer)

	_, err = NewLocator(DefaultSelectors(), "touch")
	assert.ErrorContains(t, err, "unknown pointer mode")

	sel := DefaultSelectors()
	sel.Item = Query{}
	_, err = NewLocator(sel, PointerCDP)
	assert.Error(t, err)
}
