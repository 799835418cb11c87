package csv

import (
	"fmt"
	"sync/atomic"

	"github.com/jrivets/log4g"
)

var readerSeq int64

// newLogger returns the logger of a new reader, tagged with a sequence id.
func newLogger() log4g.Logger {
	id := atomic.AddInt64(&readerSeq, 1)
	return log4g.GetLogger("csv.reader").WithId(fmt.Sprintf("[reader#%d]", id)).(log4g.Logger)
}
