// Package crawl — BFS queue with deduplication.
package crawl

// queue holds discovered URLs in BFS order. A URL is accepted once, and
// no more than limit URLs are accepted in total.
type queue struct {
	items []string
	seen  map[string]bool
	limit int
	idx   int // next URL to visit
}

func newQueue(limit int) *queue {
	return &queue{seen: make(map[string]bool), limit: limit}
}

// add enqueues url unless it was seen before or the queue is full.
func (q *queue) add(url string) {
	if q.seen[url] || q.full() {
		return
	}
	q.seen[url] = true
	q.items = append(q.items, url)
}

func (q *queue) full() bool { return len(q.items) >= q.limit }

func (q *queue) hasNext() bool { return q.idx < len(q.items) }

func (q *queue) next() string {
	url := q.items[q.idx]
	q.idx++
	return url
}

// all returns every accepted URL in discovery order.
func (q *queue) all() []string { return q.items }
