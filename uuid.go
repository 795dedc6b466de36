package premortem

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a new random identifier for an analysis report. It retries on error with a 1ms
// backoff up to 10 times and panics only if all attempts fail.
func NewID() string {
	var err error
	for i := 0; i < 10; i++ {
		var id uuid.UUID
		id, err = uuid.NewRandom()
		if err == nil {
			return id.String()
		}
		time.Sleep(time.Duration(1 * time.Millisecond))
	}
	panic(err)
}

// ValidID reports whether id parses as a UUID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
