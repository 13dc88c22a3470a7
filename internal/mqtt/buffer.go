package mqtt

import "log"

// queuedMsg stores a serialized message held back while the broker is
// unreachable.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineQueue is a fixed-capacity FIFO of messages awaiting reconnection.
// When full, the oldest message is dropped. Not safe for concurrent use;
// the caller must synchronize.
type offlineQueue struct {
	buf      []queuedMsg
	capacity int
	head     int // next write position
	count    int
	dropped  bool // true if any message was dropped since last drain
}

func newOfflineQueue(capacity int) *offlineQueue {
	return &offlineQueue{
		buf:      make([]queuedMsg, capacity),
		capacity: capacity,
	}
}

func (q *offlineQueue) push(msg queuedMsg) {
	if q.count == q.capacity {
		if !q.dropped {
			log.Printf("mqtt: offline queue full (%d messages), dropping oldest", q.capacity)
			q.dropped = true
		}
		// head already points at the oldest entry; overwrite it.
		q.buf[q.head] = msg
		q.head = (q.head + 1) % q.capacity
		return
	}
	q.buf[q.head] = msg
	q.head = (q.head + 1) % q.capacity
	q.count++
}

// drain returns the queued messages oldest-first and empties the queue.
func (q *offlineQueue) drain() []queuedMsg {
	if q.count == 0 {
		return nil
	}
	out := make([]queuedMsg, 0, q.count)
	start := (q.head - q.count + q.capacity) % q.capacity
	for i := 0; i < q.count; i++ {
		out = append(out, q.buf[(start+i)%q.capacity])
	}
	q.count = 0
	q.head = 0
	q.dropped = false
	return out
}

func (q *offlineQueue) len() int {
	return q.count
}
