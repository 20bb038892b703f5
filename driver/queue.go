package driver

import "fmt"

// QueueKind selects the queue class a command buffer is recorded for.
type QueueKind uint8

const (
	Graphics QueueKind = iota
	Compute
	Transfer
)

// NumQueueKinds is the number of queue kinds; per-kind arrays are sized by it.
const NumQueueKinds = 3

var queueKinds = [NumQueueKinds]QueueKind{Graphics, Compute, Transfer}

// QueueKinds returns every queue kind in index order.
func QueueKinds() [NumQueueKinds]QueueKind {
	return queueKinds
}

func (k QueueKind) Valid() bool {
	return k < NumQueueKinds
}

func (k QueueKind) String() string {
	switch k {
	case Graphics:
		return "graphics"
	case Compute:
		return "compute"
	case Transfer:
		return "transfer"
	default:
		return fmt.Sprintf("QueueKind(%d)", uint8(k))
	}
}
