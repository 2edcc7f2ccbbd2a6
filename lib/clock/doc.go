// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The API client waits out rate limits with After and the search
// command anchors its date window with Now. Both take a Clock so tests
// can run the retry path and the date arithmetic without real time
// passing:
//
//	fake := clock.Fake(time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
//	client := crashapi.New(crashapi.Config{Clock: fake})
//	go client.PingData(ctx, date)
//	fake.WaitForTimers(1) // the client is waiting on Retry-After
//	fake.Advance(time.Second)
package clock
