// Package common contains shared constants and sentinel errors used across
// Trazo components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound and outbound requests.
const AccessTokenHeaderName = "access_token"

// UserIDHeaderName carries the caller's user ID when the server runs
// outside production and no access token is supplied.
const UserIDHeaderName = "user_id"

// EnvironmentProduction is the environment name in which every claim
// operation must carry a valid access token.
const EnvironmentProduction = "production"
