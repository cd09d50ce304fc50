package note

import (
	"sync"
	"time"
)

// ids hands out creation-time derived ids that only grow within the process
var ids struct {
	sync.Mutex
	last int64
}

func nextId(now time.Time) int64 {
	ids.Lock()
	defer ids.Unlock()

	id := now.UnixMilli()
	if id <= ids.last {
		id = ids.last + 1
	}
	ids.last = id
	return id
}

func observeId(id int64) {
	ids.Lock()
	defer ids.Unlock()

	if id > ids.last {
		ids.last = id
	}
}

// now is the server clock; timestamps keep millisecond precision, as stored
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
