package component

import (
	"strconv"
	"sync/atomic"
)

// BodyID is the process-unique id of a Body. Zero means "no body".
type BodyID uint64

var lastBodyID atomic.Uint64

// NextBodyID allocates a new sequential id.
func NextBodyID() BodyID {
	return BodyID(lastBodyID.Add(1))
}

func (id BodyID) Valid() bool { return id != 0 }

func (id BodyID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// MapObjectID identifies an object in a loaded tile map.
type MapObjectID int
