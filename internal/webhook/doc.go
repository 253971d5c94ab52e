// Package webhook receives inbound SMS callbacks from Twilio and hands them
// to the conversation agent. The webhook always acknowledges with empty TwiML
// so replies flow through the REST API rather than the callback response.
package webhook
