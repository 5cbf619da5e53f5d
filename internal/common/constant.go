// Package common contains shared constants and sentinel errors used across
// suiblog components.
package common

// SessionTokenHeaderName is the gRPC metadata key used to carry the wallet
// bridge session token on outbound requests.
const SessionTokenHeaderName = "x-wallet-session"

// DraftKey is the metadata key under which the in-progress post is stored.
const DraftKey = "blogPostDraft"

// ClockObjectID is the shared ledger clock object passed to timestamped calls.
const ClockObjectID = "0x6"
