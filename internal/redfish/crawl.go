// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package redfish

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/alitto/pond"
	"go.uber.org/zap"
)

// Instance is one concrete resource discovered on the endpoint, represented
// as the decoded JSON body plus its identifying metadata.
type Instance struct {
	URI  string
	Type string // full @odata.type, e.g. "#Thermal.v1_6_0.Thermal"
	Data map[string]any
}

// TypeName returns the versioned type identifier without the leading '#'.
func (i *Instance) TypeName() string {
	return strings.TrimPrefix(i.Type, "#")
}

// ShortName returns the unversioned type name, e.g. "Thermal".
func (i *Instance) ShortName() string {
	name := i.TypeName()
	if idx := strings.Index(name, "."); idx >= 0 {
		return name[:idx]
	}
	return name
}

const (
	crawlWorkers  = 8
	crawlCapacity = 64
	crawlMaxDepth = 5
)

// crawler walks the resource tree breadth-first from the service root,
// following @odata.id links, and records every resource that carries an
// @odata.type. Each frontier level fans out on a worker pool; only the
// coordinator submits tasks, so workers never block on a full queue.
type crawler struct {
	client   *Client
	log      *zap.Logger
	maxDepth int

	mu        sync.Mutex
	visited   map[string]bool
	instances []*Instance
}

func newCrawler(client *Client, log *zap.Logger) *crawler {
	return &crawler{
		client:   client,
		log:      log,
		maxDepth: crawlMaxDepth,
		visited:  map[string]bool{},
	}
}

func (cr *crawler) run(ctx context.Context) ([]*Instance, error) {
	root, err := cr.client.Get(ctx, ServiceRootPath)
	if err != nil {
		return nil, err
	}
	cr.record(ServiceRootPath, root)

	pool := pond.New(crawlWorkers, crawlCapacity)
	defer pool.StopAndWait()

	frontier := resourceLinks(root)
	for depth := 1; depth <= cr.maxDepth && len(frontier) > 0; depth++ {
		frontier = cr.crawlLevel(ctx, pool, frontier)
	}

	cr.mu.Lock()
	defer cr.mu.Unlock()
	instances := make([]*Instance, len(cr.instances))
	copy(instances, cr.instances)
	sort.Slice(instances, func(i, j int) bool { return instances[i].URI < instances[j].URI })
	return instances, nil
}

// crawlLevel fetches one frontier level concurrently and returns the links
// discovered for the next one. Workers only fetch and record; task submission
// stays on the coordinator so a wide level cannot deadlock the pool.
func (cr *crawler) crawlLevel(ctx context.Context, pool *pond.WorkerPool, frontier []string) []string {
	var (
		mu   sync.Mutex
		next []string
	)
	group := pool.Group()
	for _, uri := range frontier {
		if !cr.claim(uri) {
			continue
		}
		group.Submit(func() {
			data, err := cr.client.Get(ctx, uri)
			if err != nil {
				// An unreadable branch does not fail the whole crawl.
				cr.log.Debug("skipping unreadable resource", zap.String("uri", uri), zap.Error(err))
				return
			}
			cr.record(uri, data)
			links := resourceLinks(data)
			mu.Lock()
			next = append(next, links...)
			mu.Unlock()
		})
	}
	group.Wait()
	return next
}

func (cr *crawler) claim(uri string) bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	if cr.visited[uri] {
		return false
	}
	cr.visited[uri] = true
	return true
}

func (cr *crawler) record(uri string, data map[string]any) {
	odataType, _ := data["@odata.type"].(string)
	if odataType == "" {
		return
	}
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.instances = append(cr.instances, &Instance{URI: uri, Type: odataType, Data: data})
}

// resourceLinks extracts the @odata.id references reachable from data:
// collection members, link objects, and nested containers. The resource's
// own @odata.id is not a link.
func resourceLinks(data map[string]any) []string {
	var links []string
	for key, val := range data {
		if key == "@odata.id" {
			continue
		}
		links = append(links, valueLinks(val)...)
	}
	return links
}

func valueLinks(val any) []string {
	switch v := val.(type) {
	case map[string]any:
		// A bare reference object links to another resource; a populated
		// object is inline data whose children may still hold references.
		if id, ok := v["@odata.id"].(string); ok && len(v) == 1 {
			return []string{id}
		}
		var links []string
		for key, child := range v {
			if key == "@odata.id" {
				continue
			}
			links = append(links, valueLinks(child)...)
		}
		return links
	case []any:
		var links []string
		for _, item := range v {
			links = append(links, valueLinks(item)...)
		}
		return links
	default:
		return nil
	}
}
