package ratelimiter

import (
	"sync"
	"time"
)

// SlidingWindowCounter implements RateLimiter with a bucketed sliding window.
// It is a compromise between the fixed window counter and a full request log:
// cheaper than the log, and without the fixed window's boundary bursts.
type SlidingWindowCounter struct {
	limit          int
	window         time.Duration
	numBuckets     int
	bucketSize     time.Duration
	buckets        []int
	currentBucket  int
	lastUpdateTime time.Time
	mutex          sync.Mutex
}

// NewSlidingWindowCounter allows at most limit requests within the window,
// tracked across numBuckets sub-intervals.
func NewSlidingWindowCounter(limit int, window time.Duration, numBuckets int) *SlidingWindowCounter {
	if numBuckets <= 0 {
		numBuckets = 10
	}
	return &SlidingWindowCounter{
		limit:          limit,
		window:         window,
		numBuckets:     numBuckets,
		bucketSize:     window / time.Duration(numBuckets),
		buckets:        make([]int, numBuckets),
		lastUpdateTime: time.Now(),
	}
}

// slide advances the window, zeroing buckets that fell out of it.
func (swc *SlidingWindowCounter) slide() {
	now := time.Now()
	elapsed := now.Sub(swc.lastUpdateTime)
	bucketsToSlide := int(elapsed / swc.bucketSize)
	if bucketsToSlide <= 0 {
		return
	}

	if bucketsToSlide >= swc.numBuckets {
		for i := range swc.buckets {
			swc.buckets[i] = 0
		}
	} else {
		for i := 1; i <= bucketsToSlide; i++ {
			swc.buckets[(swc.currentBucket+i)%swc.numBuckets] = 0
		}
	}
	swc.currentBucket = (swc.currentBucket + bucketsToSlide) % swc.numBuckets
	swc.lastUpdateTime = now
}

// Allow admits the request if the total count across all buckets is under
// the limit.
func (swc *SlidingWindowCounter) Allow() bool {
	swc.mutex.Lock()
	defer swc.mutex.Unlock()

	swc.slide()

	var total int
	for _, count := range swc.buckets {
		total += count
	}

	if total < swc.limit {
		swc.buckets[swc.currentBucket]++
		return true
	}
	return false
}
