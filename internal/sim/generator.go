package sim

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Item is a synthetic competitor with a hidden true strength. The simulation
// judges pairs according to the hidden strengths; a converged session should
// recover their order.
type Item struct {
	Key      string
	Strength float64
}

// generateItems creates n items with hidden strengths spread uniformly
// across [base-spread/2, base+spread/2].
func generateItems(rng *rand.Rand, n int, base, spread float64) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			Key:      fmt.Sprintf("item-%03d-%s", i, uuid.New().String()[:8]),
			Strength: base - spread/2 + rng.Float64()*spread,
		}
	}
	return items
}
