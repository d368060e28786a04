// Package semhome implements a smart-home semantic pipeline: simulated
// sensors produce readings, readings become SOSA-style observations,
// observations become semantic events, and a tracker derives higher-level
// state, rule firings, and correlations from the event stream.
//
// # Architecture
//
// The pipeline is a straight line with fan-out at the end:
//
//	┌──────────────┐    ┌──────────────┐    ┌──────────────┐
//	│   Simulate   │───►│   Observe    │───►│    Event     │
//	│ (generator)  │    │ (SOSA build) │    │  (deriver)   │
//	└──────────────┘    └──────────────┘    └──────┬───────┘
//	                                               │
//	                                        ┌──────▼───────┐
//	                                        │   Tracker    │  state, rules,
//	                                        │              │  correlations
//	                                        └──────┬───────┘
//	                                               │ fan-out
//	                  ┌──────────────┬─────────────┼──────────────┐
//	                  ▼              ▼             ▼              ▼
//	             ┌─────────┐   ┌──────────┐  ┌──────────┐  ┌──────────┐
//	             │  File   │   │   NATS   │  │WebSocket │  │ (custom) │
//	             │ Output  │   │ Publish  │  │   Hub    │  │subscriber│
//	             └─────────┘   └──────────┘  └──────────┘  └──────────┘
//
// Tracker subscribers receive every event, raw and derived. Each subscriber
// processes independently; a panic or error in one does not affect the rest.
//
// Alongside the pipeline, the compose package offers an LLM-backed service
// composition advisor: given a goal ("detect fire risk"), it asks a chat
// model for a plan wiring catalog services together, validates the plan
// structurally and semantically, and falls back to canned plans when no
// model is configured or the model misbehaves.
//
// # Packages
//
// Pipeline:
//   - catalog: sensor, location, and service descriptors
//   - simulate: deterministic pseudo-random reading generation
//   - observe: SOSA observation construction and interpretation
//   - event: semantic event model and threshold/anomaly derivation
//   - tracker: state tracking, rule evaluation, correlation detection
//   - compose: LLM composition advisor with validation and fallbacks
//
// Infrastructure:
//   - config: JSON configuration with env overrides
//   - errors: structured error handling with severity classes
//   - health: component health monitoring
//   - metric: Prometheus metrics
//   - vocabulary: SOSA/SSN and event vocabulary constants
//   - pkg/buffer: generic ring buffer
//   - pkg/timestamp: time utilities
//
// Edges:
//   - service: the collector loop (sample, queue, drain, dispatch)
//   - gateway/http: REST API, websocket event feed, metrics endpoint
//   - output/file: hourly-rotated JSONL event dumps
//   - output/natspub: NATS event publishing
//
// # Usage
//
// Run the full pipeline with the HTTP gateway:
//
//	semhome --mode run --config config.json
//
// One deterministic sweep plus two example compositions, then exit:
//
//	semhome --mode demo --seed 42
//
// One-off composition from the command line:
//
//	semhome --mode compose --goal "reduce energy use overnight"
//
// # Design Principles
//
// Explicit dependencies, no globals: every component takes its
// collaborators through constructors and options.
//
// Degrade, don't die: a full queue marks the collector degraded, a failed
// model call serves a canned plan, a slow websocket client is disconnected
// rather than blocking the hub.
//
// Bounded everywhere: event history, sample windows, composition history,
// and per-client websocket backlogs all have fixed capacities.
package semhome
