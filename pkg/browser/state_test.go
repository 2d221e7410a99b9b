package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquisitionTransitions(t *testing.T) {
	start := acquisition{state: stateAttempting, attempt: 1}

	got := start.next(false, 2, 3)
	assert.Equal(t, acquisition{state: stateAttempting, launcher: 1, attempt: 1}, got, "primary failure moves to fallback")

	got = got.next(false, 2, 3)
	assert.Equal(t, acquisition{state: stateAttempting, launcher: 0, attempt: 2}, got, "fallback failure starts next attempt")

	got = acquisition{state: stateAttempting, launcher: 1, attempt: 3}.next(false, 2, 3)
	assert.Equal(t, stateExhausted, got.state)

	got = start.next(true, 2, 3)
	assert.Equal(t, stateSucceeded, got.state)

	exhausted := acquisition{state: stateExhausted, attempt: 3}
	assert.Equal(t, exhausted, exhausted.next(true, 2, 3), "terminal states do not move")
	assert.Equal(t, "exhausted", exhausted.state.String())
}

func TestLocatorSelectors(t *testing.T) {
	assert.Equal(t, `[id="product-number inputtextPN"]`, ID("product-number inputtextPN").cssSelector())
	assert.Equal(t, `xpath=//div`, playwrightSelector(XPath("//div")))
	assert.Equal(t, "id=inputtextpfinder", ID("inputtextpfinder").String())
}

func TestDefaultOptionsArgs(t *testing.T) {
	args := DefaultOptions().extraArgs()
	assert.Equal(t, []string{"--disable-gpu", "--no-sandbox", "--disable-dev-shm-usage", "--log-level=3"}, args)
}
