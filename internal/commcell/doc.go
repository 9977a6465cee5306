// Package commcell provides the HTTP client for the Commvault Command
// Center REST API.
//
// The client authenticates with the Authtoken header using the access token
// from the secret store. On a 401 response it renews the token pair once
// using the stored refresh token and retries the request; transient network
// and 5xx failures are retried by the underlying retryablehttp client.
//
// Responses are decoded as JSON into generic maps: the tool layer filters
// them down to the fields worth showing to an LLM rather than binding the
// full Command Center schema.
package commcell
