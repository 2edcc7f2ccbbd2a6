// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package correlations turns the published signature correlation data
// into percentages.
//
// Two payloads feed a summary: [Totals], the number of crashes per
// release channel for the reference date, and a per-signature
// [Response] listing attributes that are over-represented in the
// signature's crashes. For each attribute the summary reports how
// often it appears in the signature's crashes (SigPct) and in the
// channel as a whole (RefPct). A result may carry a [Prior]: the same
// comparison restricted to the crashes matching another attribute,
// which supplies its own narrower denominators.
//
// Channel names fail closed: only release, beta, nightly and esr have
// totals, and anything else is an [*UnknownChannelError].
package correlations
