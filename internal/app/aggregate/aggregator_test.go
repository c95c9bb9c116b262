package aggregate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playtime/internal/domain/playlist"
	"github.com/osa030/playtime/internal/domain/video"
)

// fakeCatalog serves a playlist split into pages.
type fakeCatalog struct {
	mu        sync.Mutex
	pages     [][]string
	durations map[string]int64
	failItems map[string]bool
	failPage  int // index of the page whose fetch fails, -1 for none
	onPage    func(index int)

	pageFetches int
	lookups     []string
	batches     [][]string
}

func newFakeCatalog(pageSize int, durations []int64) *fakeCatalog {
	c := &fakeCatalog{
		durations: make(map[string]int64),
		failItems: make(map[string]bool),
		failPage:  -1,
	}
	var page []string
	for i, d := range durations {
		id := fmt.Sprintf("v%d", i+1)
		c.durations[id] = d
		page = append(page, id)
		if len(page) == pageSize {
			c.pages = append(c.pages, page)
			page = nil
		}
	}
	if len(page) > 0 || len(c.pages) == 0 {
		c.pages = append(c.pages, page)
	}
	return c
}

func (c *fakeCatalog) FetchItemPage(ctx context.Context, id playlist.ID, pageToken string) (playlist.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	index := 0
	if pageToken != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(pageToken, "page-"))
		if err != nil {
			return playlist.Page{}, err
		}
		index = n
	}
	c.pageFetches++
	if c.onPage != nil {
		c.onPage(index)
	}
	if index == c.failPage {
		return playlist.Page{}, errors.New("503 service unavailable")
	}

	page := playlist.Page{}
	for _, vid := range c.pages[index] {
		page.Items = append(page.Items, playlist.Item{VideoID: vid})
	}
	if index+1 < len(c.pages) {
		page.NextPageToken = fmt.Sprintf("page-%d", index+1)
	}
	return page, nil
}

func (c *fakeCatalog) FetchItemDuration(ctx context.Context, videoID string) video.Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups = append(c.lookups, videoID)
	return c.resolveLocked(videoID)
}

func (c *fakeCatalog) FetchItemDurations(ctx context.Context, videoIDs []string) []video.Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, append([]string(nil), videoIDs...))
	results := make([]video.Resolution, len(videoIDs))
	for i, id := range videoIDs {
		c.lookups = append(c.lookups, id)
		results[i] = c.resolveLocked(id)
	}
	return results
}

func (c *fakeCatalog) resolveLocked(videoID string) video.Resolution {
	d, ok := c.durations[videoID]
	if !ok || c.failItems[videoID] {
		return video.Degrade(videoID, "video is unavailable or hidden")
	}
	return video.Resolved(videoID, d)
}

func sequence(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return out
}

func sum(values []int64) int64 {
	var total int64
	for _, v := range values {
		total += v
	}
	return total
}

func TestAggregate_FullRangeSumsEveryItem(t *testing.T) {
	for _, n := range []int{0, 1, 3, 49, 50, 51, 120} {
		t.Run(fmt.Sprintf("%d items", n), func(t *testing.T) {
			durations := sequence(n)
			catalog := newFakeCatalog(50, durations)

			result, err := New(catalog, Options{}).Aggregate(context.Background(), "PL", playlist.Range{Start: 1})
			require.NoError(t, err)

			assert.Equal(t, sum(durations), result.TotalSeconds)
			assert.Equal(t, n, result.Resolved)
			assert.Equal(t, n, result.Visited)
			assert.False(t, result.Partial)
			assert.Empty(t, result.Degraded)
		})
	}
}

func TestAggregate_Ranges(t *testing.T) {
	durations := sequence(120) // item i lasts i seconds

	tests := []struct {
		name        string
		rng         playlist.Range
		expected    int64
		lookups     int
		pageFetches int
	}{
		{
			name:        "middle of first page",
			rng:         playlist.Range{Start: 3, End: 5},
			expected:    3 + 4 + 5,
			lookups:     3,
			pageFetches: 1,
		},
		{
			name:        "spans a page boundary",
			rng:         playlist.Range{Start: 49, End: 52},
			expected:    49 + 50 + 51 + 52,
			lookups:     4,
			pageFetches: 2,
		},
		{
			name:        "end exactly at page end stops fetching",
			rng:         playlist.Range{Start: 1, End: 50},
			expected:    sum(durations[:50]),
			lookups:     50,
			pageFetches: 1,
		},
		{
			name:        "open ended from the last page",
			rng:         playlist.Range{Start: 101},
			expected:    sum(durations[100:]),
			lookups:     20,
			pageFetches: 3,
		},
		{
			name:        "start beyond item count",
			rng:         playlist.Range{Start: 500},
			expected:    0,
			lookups:     0,
			pageFetches: 3,
		},
		{
			name:        "end beyond item count caps at the last item",
			rng:         playlist.Range{Start: 118, End: 1000},
			expected:    118 + 119 + 120,
			lookups:     3,
			pageFetches: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := newFakeCatalog(50, durations)

			result, err := New(catalog, Options{}).Aggregate(context.Background(), "PL", tt.rng)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, result.TotalSeconds)
			assert.Len(t, catalog.lookups, tt.lookups, "out-of-range items must not be looked up")
			assert.Equal(t, tt.pageFetches, catalog.pageFetches)
		})
	}
}

func TestAggregate_SkipsPrefixWithoutLookups(t *testing.T) {
	catalog := newFakeCatalog(50, sequence(10))

	_, err := New(catalog, Options{}).Aggregate(context.Background(), "PL", playlist.Range{Start: 8})
	require.NoError(t, err)

	assert.Equal(t, []string{"v8", "v9", "v10"}, catalog.lookups)
}

func TestAggregate_FailedItemContributesZero(t *testing.T) {
	durations := []int64{60, 120, 180, 240}
	catalog := newFakeCatalog(2, durations)
	catalog.failItems["v2"] = true

	result, err := New(catalog, Options{}).Aggregate(context.Background(), "PL", playlist.Range{Start: 1})
	require.NoError(t, err)

	assert.Equal(t, int64(60+180+240), result.TotalSeconds)
	assert.Equal(t, 4, result.Resolved)
	require.Len(t, result.Degraded, 1)
	assert.Equal(t, "v2", result.Degraded[0].VideoID)
	assert.True(t, result.Degraded[0].Degraded)
	assert.False(t, result.Partial)
}

func TestAggregate_PageFailureReturnsPartialSum(t *testing.T) {
	durations := sequence(10)
	catalog := newFakeCatalog(3, durations) // pages: 1-3, 4-6, 7-9, 10
	catalog.failPage = 2

	result, err := New(catalog, Options{}).Aggregate(context.Background(), "PL", playlist.Range{Start: 1})
	require.NoError(t, err, "page failures are not reported as errors")

	assert.Equal(t, sum(durations[:6]), result.TotalSeconds)
	assert.NotEqual(t, sum(durations), result.TotalSeconds)
	assert.True(t, result.Partial)
	assert.Contains(t, result.PartialReason, "503")
	assert.Equal(t, 3, catalog.pageFetches)
}

func TestAggregate_FirstPageFailure(t *testing.T) {
	catalog := newFakeCatalog(50, sequence(5))
	catalog.failPage = 0

	result, err := New(catalog, Options{}).Aggregate(context.Background(), "PL", playlist.Range{Start: 1})
	require.NoError(t, err)
	assert.Zero(t, result.TotalSeconds)
	assert.True(t, result.Partial)
}

func TestAggregate_ScenarioThreeItems(t *testing.T) {
	catalog := newFakeCatalog(50, []int64{60, 120, 180})

	result, err := New(catalog, Options{}).Aggregate(context.Background(), "PL", playlist.Range{Start: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(360), result.TotalSeconds)
}

func TestAggregate_ResolutionModesAgree(t *testing.T) {
	durations := sequence(137)

	tests := []struct {
		name string
		opts Options
	}{
		{name: "sequential", opts: Options{}},
		{name: "concurrent", opts: Options{Concurrency: 8}},
		{name: "batched", opts: Options{BatchSize: 20}},
		{name: "batched and concurrent", opts: Options{Concurrency: 4, BatchSize: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := newFakeCatalog(50, durations)
			catalog.failItems["v77"] = true

			result, err := New(catalog, tt.opts).Aggregate(context.Background(), "PL", playlist.Range{Start: 5, End: 130})
			require.NoError(t, err)

			assert.Equal(t, sum(durations[4:130])-77, result.TotalSeconds)
			assert.Equal(t, 126, result.Resolved)
			require.Len(t, result.Degraded, 1)
			assert.Equal(t, "v77", result.Degraded[0].VideoID)

			for _, batch := range catalog.batches {
				assert.LessOrEqual(t, len(batch), tt.opts.BatchSize)
			}
		})
	}
}

func TestAggregate_SequentialLookupOrder(t *testing.T) {
	catalog := newFakeCatalog(2, sequence(5))

	_, err := New(catalog, Options{}).Aggregate(context.Background(), "PL", playlist.Range{Start: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2", "v3", "v4", "v5"}, catalog.lookups)
}

func TestAggregate_ContextCanceled(t *testing.T) {
	durations := sequence(10)
	catalog := newFakeCatalog(3, durations)

	ctx, cancel := context.WithCancel(context.Background())
	catalog.onPage = func(index int) {
		if index == 1 {
			cancel()
		}
	}

	result, err := New(catalog, Options{}).Aggregate(ctx, "PL", playlist.Range{Start: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, result)
	assert.True(t, result.Partial)
	assert.Equal(t, 2, catalog.pageFetches)
}
