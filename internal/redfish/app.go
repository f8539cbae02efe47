// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

// Package redfish provides the transport, session, and resource-model layer
// backing the rfctl commands: an HTTP client for a Redfish endpoint, a
// crawler that discovers the resource tree, and an App that resolves
// selectors and retrieves properties from discovered instances.
package redfish

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Sentinel outcomes surfaced to the command layer. Match with errors.Is.
var (
	// ErrEmptyRefine reports that a refined retrieval (instance subset or
	// read-only removal) matched nothing. Callers degrade by retrying the
	// retrieval unrefined.
	ErrEmptyRefine = errors.New("refined retrieval matched no content")

	// ErrNothingSelected reports that no resource type is selected.
	ErrNothingSelected = errors.New("no type currently selected")

	// ErrNoInstances reports that a selector matched no discovered resource.
	ErrNoInstances = errors.New("no instances found for selected type")
)

// Filter restricts a selection to instances whose attribute renders equal to
// the given value.
type Filter struct {
	Attribute string
	Value     string
}

// GetOptions refine a GetProps call.
type GetOptions struct {
	// RemoveReadOnly drops read-only and @odata properties from results.
	RemoveReadOnly bool
	// Instances restricts retrieval to a previously selected subset;
	// nil means every instance of the selected type.
	Instances []*Instance
	// NoContent, when non-nil, records requested property paths that
	// matched nothing.
	NoContent map[string]struct{}
}

// App holds the per-invocation resource inventory and selection state. It is
// the session-side collaborator of the CLI commands: commands never touch the
// wire directly.
type App struct {
	client    *Client
	log       *zap.Logger
	selector  string
	instances []*Instance
	crawled   bool
}

// NewApp wraps client in an App.
func NewApp(client *Client, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{client: client, log: log}
}

// Selector returns the active normalized selector, or "".
func (a *App) Selector() string {
	return a.selector
}

// Refresh discards the discovered inventory so the next selection re-crawls
// the endpoint.
func (a *App) Refresh() {
	a.crawled = false
	a.instances = nil
}

// NormalizeSelector appends the type-name separator when the selector lacks
// one; Redfish type identifiers are dot-versioned, so "Thermal" must match
// "Thermal.v1_6_0.Thermal" but not "ThermalMetrics".
func NormalizeSelector(selector string) string {
	if selector != "" && !strings.Contains(selector, ".") {
		return selector + "."
	}
	return selector
}

// Select resolves selector (and an optional filter) to concrete instances and
// makes the selector active. A filter that matches nothing yields an empty
// slice, not an error; an unknown type yields ErrNoInstances.
func (a *App) Select(ctx context.Context, selector string, filter *Filter) ([]*Instance, error) {
	if selector == "" {
		selector = a.selector
	}
	if selector == "" {
		return nil, ErrNothingSelected
	}
	selector = NormalizeSelector(selector)

	if err := a.discover(ctx); err != nil {
		return nil, err
	}

	prefix := strings.ToLower(selector)
	var matched []*Instance
	for _, inst := range a.instances {
		if strings.HasPrefix(strings.ToLower(inst.TypeName())+".", prefix) {
			matched = append(matched, inst)
		}
	}
	if len(matched) == 0 {
		return nil, errors.Wrapf(ErrNoInstances, "selector %q", strings.TrimSuffix(selector, "."))
	}
	a.selector = selector

	if filter == nil {
		return matched, nil
	}
	var filtered []*Instance
	for _, inst := range matched {
		if _, val, ok := lookupKey(inst.Data, filter.Attribute); ok {
			if fmt.Sprintf("%v", val) == filter.Value {
				filtered = append(filtered, inst)
			}
		}
	}
	return filtered, nil
}

// Types returns the short names of every discovered resource type, sorted and
// de-duplicated. With full set, the versioned identifiers are returned
// instead.
func (a *App) Types(ctx context.Context, full bool) ([]string, error) {
	if err := a.discover(ctx); err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var names []string
	for _, inst := range a.instances {
		name := inst.ShortName()
		if full {
			name = inst.TypeName()
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetProps retrieves properties for the selected type. Empty props means the
// full property map of each instance. Requested paths that match nothing are
// recorded in opts.NoContent. When the refinement carried by opts yields zero
// content, ErrEmptyRefine is returned so the caller can retry unrefined.
func (a *App) GetProps(ctx context.Context, props []string, opts GetOptions) ([]map[string]any, error) {
	refined := opts.RemoveReadOnly || opts.Instances != nil

	instances := opts.Instances
	if instances == nil {
		var err error
		instances, err = a.Select(ctx, a.selector, nil)
		if err != nil {
			return nil, err
		}
	}

	var contents []map[string]any
	for _, inst := range instances {
		content := a.instanceProps(inst, props, opts.NoContent)
		if opts.RemoveReadOnly {
			content = stripReadOnly(content)
		}
		if len(content) > 0 {
			contents = append(contents, content)
		}
	}

	if len(contents) == 0 && refined {
		return nil, ErrEmptyRefine
	}
	return contents, nil
}

func (a *App) instanceProps(inst *Instance, props []string, nocontent map[string]struct{}) map[string]any {
	if len(props) == 0 {
		content := make(map[string]any, len(inst.Data))
		for key, val := range inst.Data {
			content[key] = val
		}
		return content
	}
	content := map[string]any{}
	for _, prop := range props {
		fragment, ok := pruneToPath(inst.Data, prop)
		if !ok {
			if nocontent != nil {
				nocontent[prop] = struct{}{}
			}
			continue
		}
		mergeFragment(content, fragment)
	}
	return content
}

func (a *App) discover(ctx context.Context) error {
	if a.crawled {
		return nil
	}
	instances, err := newCrawler(a.client, a.log).run(ctx)
	if err != nil {
		return errors.Wrap(err, "discovering resource tree")
	}
	a.log.Debug("resource tree discovered", zap.Int("instances", len(instances)))
	a.instances = instances
	a.crawled = true
	return nil
}
