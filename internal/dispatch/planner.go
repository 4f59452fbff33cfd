package dispatch

import (
	"encoding/json"

	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/types"
)

// itemSize is the canonical serialised byte length of one input item.
func itemSize(item json.RawMessage) int64 {
	return int64(len(item))
}

func largestItemSize(items []json.RawMessage) int64 {
	var largest int64
	for _, item := range items {
		if size := itemSize(item); size > largest {
			largest = size
		}
	}
	return largest
}

// normalizeBucketConfig enlarges byte capacity and shrinks bucket count until
// the largest single item fits. MaxBuckets is never raised and MaxBucketBytes
// never lowered.
func normalizeBucketConfig(cfg types.BucketConfig, largest int64) types.BucketConfig {
	for largest > cfg.MaxBucketBytes && cfg.MaxBuckets > 1 {
		cfg.MaxBuckets /= 2
		if cfg.MaxBuckets < 1 {
			cfg.MaxBuckets = 1
		}
		cfg.MaxBucketBytes *= 2
	}
	if largest > cfg.MaxBucketBytes {
		cfg.MaxBucketBytes = 2 * largest
	}
	return cfg
}

// interval is a half-open [start, end) range over the item sequence.
type interval struct {
	start, end int
}

type plannedBucket struct {
	Start int
	End   int
	Bytes int64
}

// planNextBucket computes the next free contiguous range to hand out, or
// reports none available. covered holds the ranges of finished results and
// live assignments; the returned bucket never overlaps them, holds at least
// one item, and respects the byte cap and the per-bucket item quota derived
// from MaxBuckets.
func planNextBucket(items []json.RawMessage, cfg types.BucketConfig, covered []interval) (plannedBucket, bool) {
	n := len(items)
	if n == 0 {
		return plannedBucket{}, false
	}
	if cfg.MaxBuckets < 1 {
		cfg.MaxBuckets = 1
	}

	isCovered := coverageFunc(covered)

	start := 0
	for start < n && isCovered(start) {
		start++
	}
	if start >= n {
		return plannedBucket{}, false
	}

	maxItems := (n + cfg.MaxBuckets - 1) / cfg.MaxBuckets
	if maxItems < 1 {
		maxItems = 1
	}

	var bytes int64
	end := start
	for end < n && !isCovered(end) && end-start < maxItems {
		size := itemSize(items[end])
		if end > start && bytes+size > cfg.MaxBucketBytes {
			break
		}
		bytes += size
		end++
	}

	return plannedBucket{Start: start, End: end, Bytes: bytes}, true
}

func coverageFunc(covered []interval) func(int) bool {
	return func(i int) bool {
		for _, iv := range covered {
			if i >= iv.start && i < iv.end {
				return true
			}
		}
		return false
	}
}
