package matcher

import (
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
	"github.com/zwehtet-dev/tg-bot/pkg/config"
)

// honorifics stripped from the front of a name before comparison.
var honorifics = []string{"miss", "mr", "mrs", "ms", "dr", "prof", "sir", "madam"}

// bankAliases maps normalized bank spellings to a canonical identifier so
// that differently written references to the same bank compare equal.
var bankAliases = map[string]string{
	"scb":              "siamcommercialbank",
	"siamcommercial":   "siamcommercialbank",
	"ktb":              "krungthai",
	"krungthai":        "krungthai",
	"krungthaibank":    "krungthai",
	"kbank":            "kasikorn",
	"kasikorn":         "kasikorn",
	"kasikornbank":     "kasikorn",
	"bbl":              "bangkokbank",
	"bangkok":          "bangkokbank",
}

// MatchKind says how a candidate was accepted.
type MatchKind string

const (
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
)

// Result is an accepted candidate with its score.
type Result struct {
	Account    *models.BalanceAccount
	Kind       MatchKind
	Similarity float64
}

// Matcher decides whether a claimed receiver name/bank, possibly carrying
// extraction noise, denotes one of the registered receiving accounts.
type Matcher struct {
	threshold float64
	bankBonus float64
	logger    zerolog.Logger
}

func New(cfg config.MatchingConfig, logger zerolog.Logger) *Matcher {
	return &Matcher{
		threshold: cfg.SimilarityThreshold,
		bankBonus: cfg.BankMatchBonus,
		logger:    logger.With().Str("component", "account_matcher").Logger(),
	}
}

// Match scores the claimed identity against every candidate. An exact
// normalized-name match wins outright regardless of bank; otherwise the
// highest-scoring candidate above the threshold is returned. A nil result
// with models.ErrNoMatch means nothing was acceptable.
func (m *Matcher) Match(claimedName, claimedBank string, candidates []*models.BalanceAccount) (*Result, error) {
	normName := NormalizeName(claimedName)
	if normName == "" {
		return nil, models.ErrNoMatch
	}

	var best *Result
	for _, candidate := range candidates {
		if !candidate.IsActive {
			continue
		}

		candName := NormalizeName(candidate.AccountName)
		bankMatched := claimedBank == "" || BanksMatch(claimedBank, candidate.Bank)

		if normName == candName {
			kind := MatchExact
			if claimedBank != "" && !bankMatched {
				// Exact names win even when the bank label disagrees;
				// log the discrepancy instead of rejecting.
				m.logger.Info().
					Str("claimed_name", claimedName).
					Str("claimed_bank", claimedBank).
					Str("account_bank", candidate.Bank).
					Msg("Receiver matched by name only, bank label differs")
			} else {
				m.logger.Info().
					Str("claimed_name", claimedName).
					Str("account_name", candidate.AccountName).
					Str("bank", candidate.Bank).
					Msg("Receiver matched exactly")
			}
			return &Result{Account: candidate, Kind: kind, Similarity: 1.0}, nil
		}

		score := Similarity(claimedName, candidate.AccountName)
		if bankMatched && claimedBank != "" {
			score += m.bankBonus
		}
		if score > 1.0 {
			score = 1.0
		}

		if score >= m.threshold && (best == nil || score > best.Similarity) {
			best = &Result{Account: candidate, Kind: MatchFuzzy, Similarity: score}
		}
	}

	if best == nil {
		m.logger.Warn().
			Str("claimed_name", claimedName).
			Str("claimed_bank", claimedBank).
			Msg("No acceptable receiver account")
		return nil, models.ErrNoMatch
	}

	m.logger.Info().
		Str("claimed_name", claimedName).
		Str("account_name", best.Account.AccountName).
		Str("bank", best.Account.Bank).
		Float64("similarity", best.Similarity).
		Msg("Receiver matched fuzzily")
	return best, nil
}

// NormalizeName lowercases, trims, strips one leading honorific, and drops
// whitespace and punctuation. Letters and digits of any script survive;
// combining marks are kept because they carry vowels in Burmese and Thai.
func NormalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return ""
	}

	for _, prefix := range honorifics {
		if strings.HasPrefix(normalized, prefix+" ") || strings.HasPrefix(normalized, prefix+".") {
			normalized = strings.TrimSpace(normalized[len(prefix)+1:])
			break
		}
	}

	var b strings.Builder
	for _, r := range normalized {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalBank normalizes a bank label and resolves it through the alias
// table.
func CanonicalBank(bank string) string {
	normalized := NormalizeName(bank)
	if canonical, ok := bankAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// BanksMatch reports whether two bank labels denote the same bank: equal
// canonical forms, or one canonical form contained in the other.
func BanksMatch(a, b string) bool {
	ca, cb := CanonicalBank(a), CanonicalBank(b)
	if ca == "" || cb == "" {
		return false
	}
	return ca == cb || strings.Contains(ca, cb) || strings.Contains(cb, ca)
}

// Similarity scores two names in [0, 1] as 1 − distance/max(len1, len2)
// over the normalized forms. Identical normalized strings score exactly
// 1.0; an empty side scores 0.0.
func Similarity(a, b string) float64 {
	s1, s2 := NormalizeName(a), NormalizeName(b)
	if s1 == "" || s2 == "" {
		return 0.0
	}
	if s1 == s2 {
		return 1.0
	}

	r1, r2 := []rune(s1), []rune(s2)
	distance := levenshtein(r1, r2)
	maxLen := len(r1)
	if len(r2) > maxLen {
		maxLen = len(r2)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshtein operates on runes so multi-byte scripts score per character,
// not per byte.
func levenshtein(s1, s2 []rune) int {
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)

	for j := 0; j <= len(s2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
