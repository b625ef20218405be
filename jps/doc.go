// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package jps implements Jump Point Search on uniform-cost 8-connected
// grids: the canonical successor rule, a bit-parallel block scan that
// locates jump points 56 cells at a time, and the offline variant (JPS+)
// backed by a precomputed per-cell jump distance database.
//
// Symmetric grid paths make plain A* expand enormous numbers of equivalent
// nodes. The canonical ordering breaks those symmetries, and jumping skips
// the interior of canonical segments entirely, so searches expand only jump
// points; on typical maps this is an order of magnitude fewer expansions.
//
// Harabor, D., & Grastien, A. (2014). Improving jump point search.
// Proceedings of the International Conference on Automated Planning and
// Scheduling, 24, 128-135.
package jps
