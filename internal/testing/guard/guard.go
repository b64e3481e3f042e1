package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("MARQUEE_TEST_MODE") == "" {
			_ = os.Setenv("MARQUEE_TEST_MODE", "1")
		}
	})
}
