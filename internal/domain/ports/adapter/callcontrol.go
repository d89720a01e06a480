package adapter

import "context"

// CallControlAdapter is the port to the voice-call provider's REST side:
// placing outbound calls and inspecting call state. Speech capture and
// synthesis happen over the webhook channel, not through this port.
type CallControlAdapter interface {
	// StartCall places an outbound call to the given number; webhookURL is
	// invoked by the provider when the callee answers. Returns the
	// provider-assigned call SID.
	StartCall(ctx context.Context, toNumber, webhookURL string) (string, error)

	// CallStatus fetches the provider's current status string for a call
	// (queued, ringing, in-progress, completed, ...).
	CallStatus(ctx context.Context, callID string) (string, error)
}
