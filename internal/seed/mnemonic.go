// Package seed handles the wallet secret: BIP-39 mnemonics, the seeds they
// derive, the age-encrypted vault that stores them, and locked memory for
// holding them.
package seed

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"

	walleterr "github.com/mrz1836/evmwallet/pkg/errors"
)

//nolint:gochecknoglobals // compiled once
var (
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)
	bulletListRegex   = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

// ErrInvalidWordCount indicates the mnemonic must be 12 or 24 words.
var ErrInvalidWordCount = &walleterr.WalletError{
	Code:     "INVALID_WORD_COUNT",
	Message:  "word count must be 12 or 24",
	ExitCode: walleterr.ExitInput,
}

// Generate creates a new mnemonic of 12 or 24 words.
func Generate(wordCount int) (string, error) {
	var bitSize int
	switch wordCount {
	case 12:
		bitSize = 128
	case 24:
		bitSize = 256
	default:
		return "", ErrInvalidWordCount
	}

	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// Validate checks word count, words and checksum. Misspelled words are
// reported in the error suggestion.
func Validate(mnemonic string) error {
	normalized := Normalize(mnemonic)
	words := strings.Fields(normalized)
	if len(words) != 12 && len(words) != 24 {
		return walleterr.WithDetails(walleterr.ErrInvalidMnemonic, map[string]string{
			"words": strconv.Itoa(len(words)),
		})
	}

	if _, err := bip39.MnemonicToByteArray(normalized); err != nil {
		if typos := DetectTypos(normalized); len(typos) > 0 {
			return walleterr.WithSuggestion(walleterr.ErrInvalidMnemonic, FormatTypos(typos))
		}
		return walleterr.WithDetails(walleterr.ErrInvalidMnemonic, map[string]string{"reason": "checksum mismatch"})
	}
	return nil
}

// Normalize lower-cases input, strips list numbering and bullets, and
// collapses commas and whitespace to single spaces.
func Normalize(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// ToSeed validates mnemonic and derives its 64-byte seed. Callers zero the
// seed after use.
func ToSeed(mnemonic, passphrase string) ([]byte, error) {
	if err := Validate(mnemonic); err != nil {
		return nil, err
	}
	return bip39.NewSeed(Normalize(mnemonic), passphrase), nil
}

// IsValidWord checks if a word is in the English word list.
func IsValidWord(word string) bool {
	_, ok := bip39.GetWordIndex(strings.ToLower(word))
	return ok
}

// MaxTypoDistance is the largest edit distance still offered as a
// suggestion.
const MaxTypoDistance = 2

// Typo is a word outside the word list and its closest match.
type Typo struct {
	Index      int // 0-based word position
	Word       string
	Suggestion string // empty if nothing is close enough
	Distance   int
}

// SuggestWord returns the closest word-list entry to input, or "" when
// none is within MaxTypoDistance.
func SuggestWord(input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var suggestion string
	for _, word := range bip39.GetWordList() {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < minDist {
			minDist = dist
			suggestion = word
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// DetectTypos returns every word of mnemonic that is not in the word list.
func DetectTypos(mnemonic string) []Typo {
	var typos []Typo
	for i, word := range strings.Fields(Normalize(mnemonic)) {
		if IsValidWord(word) {
			continue
		}
		t := Typo{Index: i, Word: word, Suggestion: SuggestWord(word)}
		if t.Suggestion != "" {
			t.Distance = levenshtein.ComputeDistance(word, t.Suggestion)
		}
		typos = append(typos, t)
	}
	return typos
}

// FormatTypos renders typos one per line with 1-based positions.
func FormatTypos(typos []Typo) string {
	lines := make([]string, 0, len(typos))
	for _, t := range typos {
		line := "word " + strconv.Itoa(t.Index+1) + ": '" + t.Word + "'"
		if t.Suggestion != "" {
			line += " - did you mean '" + t.Suggestion + "'?"
		} else {
			line += " is not a valid BIP39 word"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
