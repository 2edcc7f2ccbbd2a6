// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package correlations

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/bureau-foundation/crashstats/lib/payload"
)

// Channels are the release channels with published correlation data.
var Channels = []string{"release", "beta", "nightly", "esr"}

// ValidChannel reports whether name is one of [Channels].
func ValidChannel(name string) bool {
	for _, channel := range Channels {
		if channel == name {
			return true
		}
	}
	return false
}

// UnknownChannelError is returned for a channel outside [Channels].
type UnknownChannelError struct {
	Channel string
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("Unknown channel %q. Valid channels: %s", e.Channel, strings.Join(Channels, ", "))
}

// Totals is the reference population: crash counts per channel.
type Totals struct {
	Date    string `json:"date"`
	Release uint64 `json:"release"`
	Beta    uint64 `json:"beta"`
	Nightly uint64 `json:"nightly"`
	ESR     uint64 `json:"esr"`
}

// ForChannel returns the channel's total, or false for an unknown
// channel.
func (totals *Totals) ForChannel(channel string) (uint64, bool) {
	switch channel {
	case "release":
		return totals.Release, true
	case "beta":
		return totals.Beta, true
	case "nightly":
		return totals.Nightly, true
	case "esr":
		return totals.ESR, true
	default:
		return 0, false
	}
}

// DecodeTotals parses the totals payload.
func DecodeTotals(data []byte) (*Totals, error) {
	var totals Totals
	err := payload.Unmarshal("correlation totals", data, &totals,
		"date", "release", "beta", "nightly", "esr")
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// Response is the per-signature correlation payload.
type Response struct {
	// Total is the number of crashes with the signature.
	Total   float64  `json:"total"`
	Results []Result `json:"results"`
}

// Result is one over-represented attribute combination.
type Result struct {
	Item           Attributes `json:"item"`
	CountReference float64    `json:"count_reference"`
	CountGroup     float64    `json:"count_group"`
	Prior          *Prior     `json:"prior"`
}

// Prior is a conditional breakdown of a result, measured against the
// crashes matching Item rather than the whole signature or channel.
type Prior struct {
	Item           Attributes `json:"item"`
	CountReference float64    `json:"count_reference"`
	CountGroup     float64    `json:"count_group"`
	TotalReference float64    `json:"total_reference"`
	TotalGroup     float64    `json:"total_group"`
}

// DecodeResponse parses a per-signature correlation payload.
func DecodeResponse(data []byte) (*Response, error) {
	var response Response
	if err := payload.Unmarshal("signature correlations", data, &response, "total", "results"); err != nil {
		return nil, err
	}
	return &response, nil
}

// UnmarshalJSON rejects a result without its item or counts.
func (result *Result) UnmarshalJSON(data []byte) error {
	if err := payload.RequireKeys(data, "item", "count_reference", "count_group"); err != nil {
		return fmt.Errorf("result: %w", err)
	}
	type plain Result
	return json.Unmarshal(data, (*plain)(result))
}

// UnmarshalJSON rejects a prior without its item, counts or totals. A
// null prior never reaches here.
func (prior *Prior) UnmarshalJSON(data []byte) error {
	err := payload.RequireKeys(data, "item", "count_reference", "count_group", "total_reference", "total_group")
	if err != nil {
		return fmt.Errorf("prior: %w", err)
	}
	type plain Prior
	return json.Unmarshal(data, (*plain)(prior))
}

// Attributes maps attribute names to JSON scalar values. Numbers keep
// their literal text so labels show exactly what was published.
type Attributes map[string]any

// UnmarshalJSON decodes numbers as json.Number.
func (attributes *Attributes) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var decoded map[string]any
	if err := decoder.Decode(&decoded); err != nil {
		return err
	}
	*attributes = decoded
	return nil
}

// FormatItem renders attributes as "key = value" pairs sorted by key
// and joined with " ∧ ".
func FormatItem(attributes Attributes) string {
	keys := make([]string, 0, len(attributes))
	for key := range attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for index, key := range keys {
		parts[index] = key + " = " + formatValue(attributes[key])
	}
	return strings.Join(parts, " ∧ ")
}

func formatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return "null"
	case bool:
		if typed {
			return "true"
		}
		return "false"
	case string:
		return typed
	case json.Number:
		return typed.String()
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(encoded)
	}
}

// SignatureHash returns the lower-case hex SHA-1 of signature. The
// correlation files are published under this name.
func SignatureHash(signature string) string {
	sum := sha1.Sum([]byte(signature))
	return hex.EncodeToString(sum[:])
}

// Summary is a signature's correlations as percentages.
type Summary struct {
	Signature string  `json:"signature"`
	Channel   string  `json:"channel"`
	Date      string  `json:"date"`
	SigCount  float64 `json:"sig_count"`
	RefCount  uint64  `json:"ref_count"`
	Items     []Item  `json:"items"`
}

// Item is one attribute with its share of the signature's crashes and
// of the channel's crashes.
type Item struct {
	Label  string     `json:"label"`
	SigPct float64    `json:"sig_pct"`
	RefPct float64    `json:"ref_pct"`
	Prior  *PriorItem `json:"prior,omitempty"`
}

// PriorItem is the conditional breakdown of an Item.
type PriorItem struct {
	Label  string  `json:"label"`
	SigPct float64 `json:"sig_pct"`
	RefPct float64 `json:"ref_pct"`
}

// Summarize converts a signature's correlation counts into
// percentages against the channel's reference total. Results keep the
// payload's order, which is already ranked. Zero denominators yield
// zero percentages.
func Summarize(response *Response, signature, channel string, totals *Totals) (*Summary, error) {
	refCount, ok := totals.ForChannel(channel)
	if !ok {
		return nil, &UnknownChannelError{Channel: channel}
	}

	items := make([]Item, len(response.Results))
	for index, result := range response.Results {
		item := Item{
			Label:  FormatItem(result.Item),
			SigPct: percentage(result.CountGroup, response.Total),
			RefPct: percentage(result.CountReference, float64(refCount)),
		}
		if prior := result.Prior; prior != nil {
			item.Prior = &PriorItem{
				Label:  FormatItem(prior.Item),
				SigPct: percentage(prior.CountGroup, prior.TotalGroup),
				RefPct: percentage(prior.CountReference, prior.TotalReference),
			}
		}
		items[index] = item
	}

	return &Summary{
		Signature: signature,
		Channel:   channel,
		Date:      totals.Date,
		SigCount:  response.Total,
		RefCount:  refCount,
		Items:     items,
	}, nil
}

func percentage(count, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return count / total * 100
}
