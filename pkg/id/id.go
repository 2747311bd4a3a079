package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Header is the HTTP header request IDs travel in.
const Header = "X-Request-ID"

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Monotonic keeps IDs minted within one millisecond sortable.
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// NewRequestID returns a time-sortable ULID for tagging one API round trip.
func NewRequestID() string {
	return newAt(time.Now().UTC())
}

func newAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	v, err := ulid.New(ulid.Timestamp(t), mono)
	if err != nil {
		panic(err)
	}
	return v.String()
}

// Time extracts the creation time of a request ID.
func Time(requestID string) (time.Time, error) {
	v, err := ulid.ParseStrict(requestID)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(v.Time()), nil
}
