package tokens

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterCount(t *testing.T) {
	c, err := NewCounter("gpt-4o")
	require.NoError(t, err)

	assert.Zero(t, c.Count(""))
	assert.Greater(t, c.Count("Tell me about a distributed system you designed."), 0)
}

func TestCounterNilFallback(t *testing.T) {
	var c *Counter
	// 4 chars per token estimate
	assert.Equal(t, 3, c.Count("twelve chars"))
	assert.Zero(t, c.Count(""))
}

func TestUsageAccumulates(t *testing.T) {
	u := NewUsage()
	u.Record(100, 20)
	u.Record(50, 10)

	prompt, completion, calls := u.Totals()
	assert.Equal(t, 150, prompt)
	assert.Equal(t, 30, completion)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "2 LLM calls, 150 prompt tokens, 30 completion tokens", u.Summary())
}

func TestUsageConcurrentRecord(t *testing.T) {
	u := NewUsage()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u.Record(10, 1)
		}()
	}
	wg.Wait()

	prompt, completion, calls := u.Totals()
	assert.Equal(t, 500, prompt)
	assert.Equal(t, 50, completion)
	assert.Equal(t, 50, calls)
}
