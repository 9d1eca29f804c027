package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnchorsScriptQuotesSelector(t *testing.T) {
	t.Parallel()
	js := AnchorsScript(`a[data-testid="result-title-a"], a.result__a`)
	assert.Contains(t, js, `document.querySelectorAll("a[data-testid=\"result-title-a\"], a.result__a")`)
	assert.Contains(t, js, `e.closest('a')`)
}
