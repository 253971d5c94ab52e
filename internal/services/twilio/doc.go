// Package twilio sends outbound SMS through the Twilio Messages API using
// form-encoded requests with basic auth.
package twilio
