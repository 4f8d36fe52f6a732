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
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"

	"github.com/ttbt-io/igsweep/sweeper"
)

// refAttr marks elements found by the locator so that they can be resolved
// to DOM nodes afterwards.
const refAttr = "data-igsweep-ref"

// findScript tags every element matching the query and returns how many were
// tagged. Tags left by an earlier search of the same kind are removed first.
const findScript = `(function(q) {
	const attr = %q;
	document.querySelectorAll('[' + attr + '^="' + q.kind + '-"]').forEach(e => e.removeAttribute(attr));
	const scopes = q.scope ? Array.from(document.querySelectorAll(q.scope)) : [document];
	const found = [];
	for (const scope of scopes) {
		for (const el of scope.querySelectorAll(q.selector)) {
			if (q.text !== '' && el.textContent.trim() !== q.text) continue;
			const target = q.ancestor ? el.closest(q.ancestor) : el;
			if (!target || found.includes(target)) continue;
			found.push(target);
		}
	}
	found.forEach((el, i) => el.setAttribute(attr, q.kind + '-' + q.seq + '-' + i));
	return found.length;
})(%s)`

// pointerScript dispatches the full pointer sequence on an element. The
// target UI ignores a bare click() from script.
const pointerScript = `(function(sel) {
	const el = document.querySelector(sel);
	if (!el) return false;
	const r = el.getBoundingClientRect();
	const init = {bubbles: true, cancelable: true, view: window, button: 0, clientX: r.left + r.width / 2, clientY: r.top + r.height / 2};
	el.dispatchEvent(new PointerEvent('pointerdown', init));
	el.dispatchEvent(new MouseEvent('mousedown', init));
	el.dispatchEvent(new PointerEvent('pointerup', init));
	el.dispatchEvent(new MouseEvent('mouseup', init));
	el.dispatchEvent(new MouseEvent('click', init));
	return true;
})(%q)`

const activateScript = `(function(sel) {
	const el = document.querySelector(sel);
	if (!el) return false;
	el.click();
	return true;
})(%q)`

// Pointer modes
const (
	// PointerCDP clicks through the DevTools input domain, exactly like a
	// real mouse.
	PointerCDP = "cdp"
	// PointerScript dispatches pointer and mouse events from page script.
	PointerScript = "script"
)

type findArgs struct {
	Kind     string `json:"kind"`
	Seq      uint64 `json:"seq"`
	Selector string `json:"selector"`
	Text     string `json:"text"`
	Ancestor string `json:"ancestor"`
	Scope    string `json:"scope"`
}

// Locator implements sweeper.Locator on a chromedp tab.
type Locator struct {
	sel     Selectors
	pointer string
	seq     atomic.Uint64
}

var _ sweeper.Locator = (*Locator)(nil)

// NewLocator returns a Locator using sel. pointer is PointerCDP or
// PointerScript; empty means PointerCDP.
func NewLocator(sel Selectors, pointer string) (*Locator, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	switch pointer {
	case "":
		pointer = PointerCDP
	case PointerCDP, PointerScript:
	default:
		return nil, fmt.Errorf("unknown pointer mode %q", pointer)
	}
	return &Locator{sel: sel, pointer: pointer}, nil
}

// find tags the matches of q and returns an element for each, in document
// order. ctx must carry a chromedp tab.
func (l *Locator) find(ctx context.Context, kind string, q Query) ([]sweeper.Element, error) {
	args := findArgs{
		Kind:     kind,
		Seq:      l.seq.Add(1),
		Selector: q.Selector,
		Text:     q.Text,
		Ancestor: q.Ancestor,
		Scope:    q.Scope,
	}
	js, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	var n int
	if err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(findScript, refAttr, js), &n)); err != nil {
		return nil, fmt.Errorf("find %s: %w", q, err)
	}
	elems := make([]sweeper.Element, n)
	for i := range n {
		elems[i] = &Element{
			loc:  l,
			ref:  fmt.Sprintf(`[%s="%s-%d-%d"]`, refAttr, kind, args.Seq, i),
			desc: fmt.Sprintf("%s #%d (%s)", kind, i, q),
		}
	}
	return elems, nil
}

func (l *Locator) findOne(ctx context.Context, kind string, q Query) (sweeper.Element, error) {
	elems, err := l.find(ctx, kind, q)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("%s: %w", q, sweeper.ErrNotFound)
	}
	return elems[0], nil
}

func (l *Locator) SelectModeControl(ctx context.Context) (sweeper.Element, error) {
	return l.findOne(ctx, "select", l.sel.SelectMode)
}

func (l *Locator) SelectableItems(ctx context.Context) ([]sweeper.Element, error) {
	return l.find(ctx, "item", l.sel.Item)
}

func (l *Locator) DeleteControl(ctx context.Context) (sweeper.Element, error) {
	return l.findOne(ctx, "delete", l.sel.Delete)
}

func (l *Locator) ConfirmControl(ctx context.Context) (sweeper.Element, error) {
	return l.findOne(ctx, "confirm", l.sel.Confirm)
}

// Element is a tagged DOM element.
type Element struct {
	loc  *Locator
	ref  string
	desc string
}

func (e *Element) Describe() string { return e.desc }

// node resolves the element to a DOM node without waiting for it.
func (e *Element) node(ctx context.Context) (*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(e.ref, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%s is gone: %w", e.desc, sweeper.ErrNotFound)
	}
	return nodes[0], nil
}

// evalBool runs script against the element and fails if it reports the
// element missing.
func (e *Element) evalBool(ctx context.Context, script string) error {
	var ok bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(script, e.ref), &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is gone: %w", e.desc, sweeper.ErrNotFound)
	}
	return nil
}

func (e *Element) Click(ctx context.Context) error {
	if e.loc.pointer == PointerScript {
		return e.evalBool(ctx, pointerScript)
	}
	n, err := e.node(ctx)
	if err != nil {
		return err
	}
	return chromedp.Run(ctx, chromedp.MouseClickNode(n))
}

func (e *Element) Focus(ctx context.Context) error {
	n, err := e.node(ctx)
	if err != nil {
		return err
	}
	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return dom.Focus().WithNodeID(n.NodeID).Do(ctx)
	}))
}

func (e *Element) Activate(ctx context.Context) error {
	return e.evalBool(ctx, activateScript)
}
