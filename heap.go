package gpucache

// purgeableQueue is a min-heap of idle resources ordered by cache
// timestamp, oldest at the root. It implements container/heap.Interface.
//
// The heap writes each resource's cache index on every move so the cache
// can remove a resource from the middle of the queue in O(log n) when it
// is handed back out. The queue is not thread-safe; the ResourceCache
// guards it with its own lock.
type purgeableQueue struct {
	items []Res
}

func (q *purgeableQueue) Len() int { return len(q.items) }

func (q *purgeableQueue) Less(i, j int) bool {
	return q.items[i].resource().timestamp < q.items[j].resource().timestamp
}

func (q *purgeableQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].resource().cacheIndex = i
	q.items[j].resource().cacheIndex = j
}

func (q *purgeableQueue) Push(x any) {
	res := x.(Res)
	res.resource().cacheIndex = len(q.items)
	q.items = append(q.items, res)
}

// contains reports whether res currently sits in the queue. The cache
// index alone cannot answer this: an idle resource may still be parked in
// the in-use array when no sweep has run since its last ref dropped, and
// its index then points into that array instead.
func (q *purgeableQueue) contains(res Res) bool {
	i := res.resource().cacheIndex
	return i >= 0 && i < len(q.items) && q.items[i] == res
}

func (q *purgeableQueue) Pop() any {
	n := len(q.items)
	res := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	res.resource().cacheIndex = -1
	return res
}
