package mirror

import (
	"fmt"
	"sync/atomic"
	"time"
)

var idCounter atomic.Uint64

// NewID builds a record identifier from the current unix-millis plus a
// process-wide counter, so rapid successive creations in the same
// millisecond stay distinct and ordering-stable. Ids are unique within
// one client, not globally.
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixMilli(), idCounter.Add(1))
}
