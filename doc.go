// Package provenance provides a client library for registering digital
// content on a ledger, managing royalty obligations, and reporting
// platform usage signals.
//
// Provenance is designed as a library, not a service. Import it directly
// into your Go application. It provides:
//
//   - Content registration with authoritative, event-derived ids
//   - Three royalty models (percentage, tiered, fixed) with pure,
//     reproducible integer calculation
//   - Deduplicated usage reporting with batched background flushing
//   - A combined registration+royalty pipeline with partial-success
//     semantics
//   - An in-process devnet backend for local development and tests
//
// # Quick Start
//
// Create a client over the devnet backend:
//
//	import (
//	    "github.com/veralith/provenance"
//	    "github.com/veralith/provenance/devnet"
//	    "github.com/veralith/provenance/store/memory"
//	)
//
//	backend := devnet.New(memory.New())
//
//	client, err := provenance.New(backend,
//	    provenance.WithCredential(provenance.Credential{Account: "0xabc"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start the client (begins background workers)
//	if err := client.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Stop()
//
// # Core Concepts
//
// A session gates writes. Reads work in any mode; writes require signing
// capability acquired by Connect:
//
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Registration returns the record with its remote-assigned id, recovered
// from the confirmation receipt's ContentRegistered event:
//
//	reg, _ := client.Registry(ctx)
//	record, err := reg.Register(ctx, "ipfs://Qm.../track.mp3", "ipfs://Qm.../meta.json", registry.ContentAudio)
//
// Royalty settings attach to a content id and are evaluated with
// integer-only arithmetic; basis points are out of 10,000:
//
//	eng, _ := client.Royalty(ctx)
//	err := eng.SetPercentage(ctx, record.ID, record.Creator, 500, provenance.ZeroAmount(), provenance.ZeroAmount())
//	owed, err := eng.Calculate(ctx, record.ID, provenance.NewAmount(1_000_000))
//
// Usage reports are counted at most once per (content, platform, scope)
// within a process:
//
//	ua, _ := client.Usage(ctx)
//	accepted, err := ua.Report(ctx, &usage.Event{
//	    ContentID: record.ID,
//	    Platform:  usage.PlatformStreaming,
//	    Quantity:  3,
//	    ScopeKey:  "viewer-42/2026-09-01",
//	})
//
// # Determinism
//
// All royalty calculations use arbitrary-precision integer arithmetic:
// the same setting and usage amount produce the same obligation on every
// platform, bit for bit. Division truncates toward zero.
//
// # TypeID
//
// Locally minted entities use TypeID for type-safe identifiers:
//
//	uevt_01h2xcejqtf2nbrexx3vqjhp41  // Usage event ID
//	sess_01h455vb4pex5vsknk084sn02q  // Session ID
//
// Content and license ids are assigned by the remote services and stay
// plain integers; the library never guesses them locally.
package provenance
