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

// Generator hands out monotonic ULID strings. Safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewGenerator builds a generator over the given entropy source. IDs created
// within the same millisecond stay lexicographically increasing.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(entropy, 0),
		now:     time.Now,
	}
}

// NewSeeded is deterministic for a given seed, which keeps test runs stable.
func NewSeeded(seed int64) *Generator {
	return NewGenerator(rand.New(rand.NewSource(seed)))
}

func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := ulid.New(ulid.Timestamp(g.now().UTC()), g.entropy)
	if err != nil {
		// only when the clock runs backwards past the monotonic window or entropy fails
		panic(err)
	}
	return v.String()
}

var std = func() *Generator {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewSeeded(seed)
}()

// New returns a ULID string from the process wide generator.
func New() string {
	return std.New()
}

// Valid reports whether s parses as a ULID.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
