// Package main hosts the awardfeed entrypoint.
//
// Architecture overview:
//   - CLI: cobra commands in cmd/ (fetch, serve) share configuration and a
//     zap logger built during PersistentPreRunE and injected via the command
//     context.
//   - Fetch pipeline: internal/pipeline runs the three award-type groups
//     strictly in sequence. For each group, internal/usaspending submits a
//     bulk-download job and polls its status with doubling backoff capped at
//     30s, then internal/archive downloads the finished ZIP and extracts the
//     first CSV member into an internal/tabular table.
//   - Filtering: internal/awards classifies every record (contract,
//     contract_idv, grant), keeps only records whose type-relevant end date
//     is still in the future at run start, re-applies the keyword filter
//     against descriptions, and derives the combined piid_or_fain id.
//   - Outputs: internal/export writes XLSX workbooks; serve mode caches the
//     latest run in memory behind internal/api (chi router with /healthz,
//     /readyz, /metrics, /v1/awards, /v1/refresh).
//   - Configuration & plumbing: Viper populates config from file/env with
//     the AWARDFEED prefix; zap provides structured logging; Prometheus
//     collectors in internal/metrics track jobs, polls, requests, and record
//     counts.
//
// Operational notes:
//   - Group fetch failures are recoverable: the run logs the error, records
//     it in the group outcome, and continues with the next group. The
//     --strict flag switches fetch to fail-fast for debugging.
//   - Poll waits are unbounded by default, mirroring the upstream job
//     lifecycle; set api.group_deadline_minutes to bound each group's fetch.
//   - Run locally: go run ./cmd/awardfeed fetch --keywords "solar,wind"
//     or awardfeed serve --refresh-on-start with AWARDFEED_SERVER_PORT set.
package main
