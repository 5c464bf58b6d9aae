package matcher

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
	"github.com/zwehtet-dev/tg-bot/pkg/config"
)

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	return New(config.MatchingConfig{
		SimilarityThreshold: 0.85,
		BankMatchBonus:      0.05,
	}, zerolog.Nop())
}

func account(id int64, bank, name string) *models.BalanceAccount {
	return &models.BalanceAccount{
		ID:          id,
		Currency:    "THB",
		Bank:        bank,
		AccountName: name,
		IsActive:    true,
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MISS Min Myat Nwe", "minmyatnwe"},
		{"minmyatnwe", "minmyatnwe"},
		{"Mr. John Smith", "johnsmith"},
		{"  Mrs Jane   Doe  ", "janedoe"},
		{"Dr.Somchai", "somchai"},
		{"O'Brien-Smith", "obriensmith"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeNamePreservesNonLatinScripts(t *testing.T) {
	// Burmese and Thai names must survive normalization; only whitespace
	// and punctuation drop out.
	assert.Equal(t, "မင်းမြတ်နွယ်", NormalizeName("မင်းမြတ်နွယ်"))
	assert.Equal(t, "မင်းမြတ်နွယ်", NormalizeName("  မင်း မြတ် နွယ်  "))
	assert.Equal(t, "สมชาย", NormalizeName("สมชาย"))
	assert.Equal(t, "minမြတ်", NormalizeName("Min မြတ်"))
	assert.NotEmpty(t, NormalizeName("မောင်မောင်"))
}

func TestSimilarityNonLatinScripts(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("မင်းမြတ်နွယ်", "မင်းမြတ်နွယ်"))
	assert.Equal(t, 1.0, Similarity("မင်း မြတ် နွယ်", "မင်းမြတ်နွယ်"))

	// One rune substituted out of three: scored per rune, not per byte.
	assert.InDelta(t, 2.0/3.0, Similarity("ကခဂ", "ကခဃ"), 1e-9)
}

func TestMatchExactNonLatinName(t *testing.T) {
	m := newTestMatcher(t)
	candidates := []*models.BalanceAccount{
		account(1, "KBank", "မင်းမြတ်နွယ်"),
	}

	result, err := m.Match("မင်းမြတ်နွယ်", "KBank", candidates)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Account.ID)
	assert.Equal(t, MatchExact, result.Kind)
	assert.Equal(t, 1.0, result.Similarity)
}

func TestNormalizeNameStripsOnlyLeadingHonorific(t *testing.T) {
	// "miss" inside a name must survive.
	assert.Equal(t, "missyusri", NormalizeName("Missy Usri"))
	assert.Equal(t, "drake", NormalizeName("Drake"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Min Myat Nwe", "MISS Min Myat Nwe"))
	assert.Equal(t, 0.0, Similarity("", "anything"))
	assert.Equal(t, 0.0, Similarity("anything", ""))

	// One substitution over ten characters.
	assert.InDelta(t, 0.9, Similarity("minmyatnwe", "minmyatnwa"), 1e-9)

	assert.Less(t, Similarity("somchai", "totally different"), 0.5)
}

func TestCanonicalBank(t *testing.T) {
	assert.Equal(t, "siamcommercialbank", CanonicalBank("SCB"))
	assert.Equal(t, "siamcommercialbank", CanonicalBank("Siam Commercial Bank"))
	assert.Equal(t, "krungthai", CanonicalBank("KTB"))
	assert.Equal(t, "krungthai", CanonicalBank("Krung Thai Bank"))
	assert.Equal(t, "kasikorn", CanonicalBank("KBank"))
	assert.Equal(t, "bangkokbank", CanonicalBank("Bangkok Bank"))
}

func TestBanksMatch(t *testing.T) {
	assert.True(t, BanksMatch("SCB", "Siam Commercial Bank"))
	assert.True(t, BanksMatch("KBank", "Kasikorn Bank"))
	assert.True(t, BanksMatch("Bangkok", "Bangkok Bank"))
	assert.False(t, BanksMatch("SCB", "Kasikorn"))
	assert.False(t, BanksMatch("", "SCB"))
}

func TestMatchExactWinsOutright(t *testing.T) {
	m := newTestMatcher(t)
	candidates := []*models.BalanceAccount{
		account(1, "SCB", "Somchai Prasert"),
		account(2, "KBank", "Min Myat Nwe"),
	}

	result, err := m.Match("MISS Min Myat Nwe", "KBank", candidates)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Account.ID)
	assert.Equal(t, MatchExact, result.Kind)
	assert.Equal(t, 1.0, result.Similarity)
}

func TestMatchExactIgnoresBankDisagreement(t *testing.T) {
	m := newTestMatcher(t)
	candidates := []*models.BalanceAccount{
		account(1, "SCB", "Min Myat Nwe"),
	}

	result, err := m.Match("Min Myat Nwe", "KBank", candidates)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Account.ID)
	assert.Equal(t, MatchExact, result.Kind)
}

func TestMatchFuzzyAboveThreshold(t *testing.T) {
	m := newTestMatcher(t)
	candidates := []*models.BalanceAccount{
		account(1, "KBank", "Min Myat Nwe"),
	}

	// One character off: 0.9 similarity, above the 0.85 threshold.
	result, err := m.Match("Min Myat Nwa", "", candidates)
	require.NoError(t, err)
	assert.Equal(t, MatchFuzzy, result.Kind)
	assert.InDelta(t, 0.9, result.Similarity, 1e-9)
}

func TestMatchBankBonusLiftsBorderlineCandidate(t *testing.T) {
	m := newTestMatcher(t)
	candidates := []*models.BalanceAccount{
		account(1, "KBank", "Min Myat Nwe"),
	}

	// Two characters off over ten: 0.80 base score.
	_, err := m.Match("Min Myat Naa", "", candidates)
	assert.ErrorIs(t, err, models.ErrNoMatch)

	result, err := m.Match("Min Myat Naa", "Kasikorn Bank", candidates)
	require.NoError(t, err)
	assert.Equal(t, MatchFuzzy, result.Kind)
	assert.InDelta(t, 0.85, result.Similarity, 1e-9)
}

func TestMatchRejectsBelowThreshold(t *testing.T) {
	m := newTestMatcher(t)
	candidates := []*models.BalanceAccount{
		account(1, "SCB", "Somchai Prasert"),
	}

	_, err := m.Match("Completely Unrelated Person", "SCB", candidates)
	assert.ErrorIs(t, err, models.ErrNoMatch)
}

func TestMatchSkipsInactiveAccounts(t *testing.T) {
	m := newTestMatcher(t)
	retired := account(1, "SCB", "Min Myat Nwe")
	retired.IsActive = false

	_, err := m.Match("Min Myat Nwe", "SCB", []*models.BalanceAccount{retired})
	assert.ErrorIs(t, err, models.ErrNoMatch)
}

func TestMatchEmptyName(t *testing.T) {
	m := newTestMatcher(t)
	_, err := m.Match("", "SCB", []*models.BalanceAccount{account(1, "SCB", "Somchai")})
	assert.ErrorIs(t, err, models.ErrNoMatch)
}

func TestMatchPicksBestCandidate(t *testing.T) {
	m := newTestMatcher(t)
	candidates := []*models.BalanceAccount{
		account(1, "SCB", "Min Myat New"),
		account(2, "KBank", "Min Myat Nwe"),
	}

	result, err := m.Match("Min Myat Nwe", "", candidates)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Account.ID)
}
