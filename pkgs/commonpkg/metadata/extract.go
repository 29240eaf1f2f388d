// Package metadata derives structured fields from free-text on-chain
// activity records. Everything here is pure and never fails: a field that
// cannot be derived is left nil.
package metadata

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

////////////////////////////////////////////////////////////////////////////////

// Tags are reported in this order regardless of where they appear in the text.
var tagVocabulary = []string{
	"nft",
	"inscription",
	"swap",
	"bridge",
	"defi",
	"staking",
	"mint",
	"transfer",
	"liquidity",
	"whale",
	"airdrop",
	"memecoin",
}

var (
	addressPattern = regexp.MustCompile(`(?i)0x[0-9a-f]{40}`)
	valuePattern   = regexp.MustCompile(`(?i)value\s+([0-9.]+)`)
	blockPattern   = regexp.MustCompile(`(?i)block\s+([0-9]+)`)
)

////////////////////////////////////////////////////////////////////////////////

type Metadata struct {
	Tags        []string
	FromAddress *string
	ToAddress   *string
	Value       *float64
	BlockNumber *int64
}

// Extract scans payload for known tags, the first two addresses, a value and a
// block number.
func Extract(payload string) Metadata {
	lower := strings.ToLower(payload)

	md := Metadata{
		Tags: extractTags(lower),
	}

	addresses := addressPattern.FindAllString(lower, 2)
	if len(addresses) >= 1 {
		md.FromAddress = &addresses[0]
	}
	if len(addresses) >= 2 {
		md.ToAddress = &addresses[1]
	}

	md.Value = extractValue(lower)
	md.BlockNumber = extractBlockNumber(lower)
	return md
}

func extractTags(lower string) []string {
	tags := []string{}
	for _, tag := range tagVocabulary {
		if strings.Contains(lower, tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}

func extractValue(lower string) *float64 {
	match := valuePattern.FindStringSubmatch(lower)
	if len(match) < 2 {
		return nil
	}
	// "1.2.3" or a lone "." is dropped rather than failing the record
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return nil
	}
	return &value
}

func extractBlockNumber(lower string) *int64 {
	match := blockPattern.FindStringSubmatch(lower)
	if len(match) < 2 {
		return nil
	}
	block, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return nil
	}
	return &block
}

////////////////////////////////////////////////////////////////////////////////

// NormalizeAddress validates a caller supplied address and returns it in the
// stored form: "0x" followed by 40 lower-case hex characters.
func NormalizeAddress(address string) (string, bool) {
	address = strings.TrimSpace(address)
	if len(address) != 42 || !strings.HasPrefix(strings.ToLower(address), "0x") {
		return "", false
	}
	if !common.IsHexAddress(address) {
		return "", false
	}
	return strings.ToLower(address), true
}

// JoinTags renders tags in their stored comma-joined form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// SplitTags is the inverse of JoinTags; an empty string yields no tags.
func SplitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	return strings.Split(tags, ",")
}
