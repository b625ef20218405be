// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package grid provides the 8-connected grid map primitives: the padded
// bit-packed traversability map with 64-bit row-slice reads, directions and
// direction sets, the dense array node pool, the monotone bucket queue, and
// the plain 8-connected expander.
package grid
