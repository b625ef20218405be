// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package parallel runs CPU-bound preprocessing loops on a pool of workers:
// one worker per CPU, each with its own context, pulling work items off a
// shared iterator.
package parallel

import (
	"sync"

	"github.com/grailbio/base/traverse"
)

// For processes every item with body, distributing items across one worker
// per CPU. newContext is called once per worker; its result is passed to
// every body invocation on that worker, so per-search scratch state (node
// pools, open lists) is allocated once and never shared.
//
// All workers run to completion even if some items fail; the first error is
// returned after the join. There is no cancellation.
func For[T, C any](items []T, newContext func() C, body func(ctx C, item T) error) error {
	var mu sync.Mutex
	next := 0
	var firstErr error

	err := traverse.CPU(func() error {
		ctx := newContext()
		for {
			mu.Lock()
			i := next
			next++
			mu.Unlock()
			if i >= len(items) {
				return nil
			}
			if err := body(ctx, items[i]); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}
	})
	if firstErr != nil {
		return firstErr
	}
	return err
}
