package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cleanEnv clears every variable Load validates so the host environment
// cannot leak into a test.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "JWT_SECRET", "COMMISSION_LADDER_FILE", "COMMISSION_MAX_LEVEL",
		"COMMISSION_TRIGGER", "COMMISSION_BASE", "VOLUME_POLICY",
		"ACCRUAL_PERIOD_BASIS", "ACCRUAL_TIMEZONE",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ladder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const catalog = `
tiers:
  - index: 1
    name: Bronze
    min_amount: "100000"
    rate: "0.5"
  - index: 2
    name: Silver
    min_amount: "1000000"
    rate: "1"
  - index: 3
    name: Crown
    rate: "0"
    manual: true
plans:
  - name: gold
    interest_rate: "0.2"
    lock_in_months: 6
`

func TestLoadDefaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Commission.Ladder.Depth())
	assert.Equal(t, 12, cfg.Commission.MaxLevel)
	assert.Equal(t, TriggerAccrual, cfg.Commission.Trigger)
	assert.Equal(t, BasePrincipal, cfg.Commission.Base)
	assert.Equal(t, VolumeSelf, cfg.Commission.Volume)
	assert.Equal(t, "Asia/Kolkata", cfg.Investment.Location.String())
	assert.Equal(t, DefaultJWTSecret, cfg.JWT.Secret)

	plan, ok := cfg.Investment.FindPlan("STANDARD")
	require.True(t, ok)
	assert.Equal(t, 11, plan.LockInMonths)
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	cleanEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", DefaultJWTSecret)
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "a-long-random-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "a-long-random-secret", cfg.JWT.Secret)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"COMMISSION_TRIGGER", "weekly"},
		{"COMMISSION_BASE", "bonus"},
		{"VOLUME_POLICY", "team"},
		{"COMMISSION_MAX_LEVEL", "0"},
		{"ACCRUAL_PERIOD_BASIS", "0"},
		{"ACCRUAL_TIMEZONE", "Mars/Olympus"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidateRequiresPlans(t *testing.T) {
	cleanEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Investment.Plans = nil
	assert.Error(t, cfg.validate())
}

func TestLoadCatalogFile(t *testing.T) {
	cleanEnv(t)
	t.Setenv("COMMISSION_LADDER_FILE", writeFile(t, catalog))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Commission.Ladder.Depth())
	assert.Equal(t, 3, cfg.Commission.MaxLevel)

	tier := cfg.Commission.Ladder.TierFor(decimal.NewFromInt(500000))
	assert.Equal(t, "Bronze", tier.Name)
	assert.True(t, decimal.RequireFromString("0.5").Equal(tier.Rate))
	assert.Equal(t, 2, cfg.Commission.Ladder.TierFor(decimal.NewFromInt(2000000)).Index)

	manual := cfg.Commission.Ladder.EffectiveTier(decimal.Zero, 3)
	assert.Equal(t, "Crown", manual.Name)

	require.Len(t, cfg.Investment.Plans, 1)
	plan, ok := cfg.Investment.FindPlan("gold")
	require.True(t, ok)
	assert.Equal(t, 6, plan.LockInMonths)
	assert.True(t, decimal.RequireFromString("0.2").Equal(plan.InterestRate))
	_, ok = cfg.Investment.FindPlan("standard")
	assert.False(t, ok)
}

func TestLoadCatalogKeepsDefaultPlans(t *testing.T) {
	cleanEnv(t)
	t.Setenv("COMMISSION_LADDER_FILE", writeFile(t, `
tiers:
  - index: 1
    name: Bronze
    min_amount: "100000"
    rate: "0.5"
`))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Commission.Ladder.Depth())
	_, ok := cfg.Investment.FindPlan("standard")
	assert.True(t, ok)
}

func TestLoadCatalogErrors(t *testing.T) {
	cases := map[string]string{
		"malformed": "tiers: [\n  - index: 1\n",
		"empty":     "plans: []\n",
		"non-monotonic": `
tiers:
  - index: 1
    name: Bronze
    min_amount: "100000"
    rate: "1"
  - index: 2
    name: Silver
    min_amount: "1000000"
    rate: "0.5"
`,
		"duplicate index": `
tiers:
  - index: 1
    name: Bronze
    rate: "0.5"
  - index: 1
    name: Silver
    rate: "1"
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv("COMMISSION_LADDER_FILE", writeFile(t, body))
			_, err := Load()
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		cleanEnv(t)
		t.Setenv("COMMISSION_LADDER_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})
}
