package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/books-engine/ledger"
	"github.com/warp/books-engine/reporting"
)

func TestScenarios_BuildBalancedBooks(t *testing.T) {
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			data, err := buildScenario(s, testNow)
			require.NoError(t, err)

			assert.NotEmpty(t, data.Transactions)
			assert.NoError(t, ledger.CheckBalanced(data.Ledger))
			assert.True(t, reporting.TrialBalance(data.Ledger).Balanced)
			require.NotNil(t, data.UserProfile)
			assert.NotEmpty(t, data.UserProfile.BusinessName)

			// Steps are dated in the past, oldest first
			for i, tx := range data.Transactions {
				assert.True(t, tx.Date.Before(testNow), "tx %d dated %s", i, tx.Date)
				if i > 0 {
					assert.False(t, tx.Date.Before(data.Transactions[i-1].Date))
				}
			}
		})
	}
}

func TestScenarios_OversoldNeedsBackorders(t *testing.T) {
	s, ok := findScenario("oversold-backorder")
	require.True(t, ok)

	data, err := buildScenario(s, testNow)
	require.NoError(t, err)
	require.Len(t, data.Products, 1)
	assert.True(t, data.Products[0].Quantity.Equal(dec("12")))

	// Under the block policy the same steps fail
	s.NeedsBackorders = false
	_, err = buildScenario(s, testNow)
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)
}

func TestStepClock(t *testing.T) {
	c := &stepClock{at: testNow, step: time.Minute}
	assert.Equal(t, testNow, c.Now())
	assert.Equal(t, testNow.Add(time.Minute), c.Now())
}

func TestLoadScenario(t *testing.T) {
	// GIVEN: Books that block overselling
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)
	env.stockShop(t)

	// WHEN: The retail scenario is loaded
	rec := env.do(t, http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "retail-shop"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: It replaced the books
	data := env.h.Books.Snapshot()
	assert.Len(t, data.Products, 3)
	assert.Equal(t, "Corner Stationery", data.UserProfile.BusinessName)

	current := decodeBody[ScenarioDTO](t, env.do(t, http.MethodGet, "/api/scenarios/current", nil))
	assert.Equal(t, "retail-shop", current.ID)

	// AND: Backorder scenarios are refused under the block policy
	rec = env.do(t, http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "oversold-backorder"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// AND: Reset clears everything
	rec = env.do(t, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.h.Books.Snapshot().Ledger)
	assert.Equal(t, "null\n", env.do(t, http.MethodGet, "/api/scenarios/current", nil).Body.String())
}

func TestLoadScenario_AllowNegative(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyAllowNegative, nil)

	rec := env.do(t, http.MethodPost, "/api/scenarios/load", map[string]any{"scenario_id": "oversold-backorder"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	list := decodeBody[[]ScenarioDTO](t, env.do(t, http.MethodGet, "/api/scenarios", nil))
	assert.Len(t, list, len(scenarios))
}
