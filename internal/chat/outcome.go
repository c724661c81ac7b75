package chat

import "fmt"

// OutcomeKind classifies the result of a completion call.
type OutcomeKind string

const (
	OutcomeSuccess            OutcomeKind = "success"
	OutcomeEmptyContent       OutcomeKind = "empty_content"
	OutcomeNetworkUnavailable OutcomeKind = "network_unavailable"
	OutcomeConfigMissing      OutcomeKind = "config_missing"
	OutcomeConfigInvalid      OutcomeKind = "config_invalid"
	OutcomeTransportFailure   OutcomeKind = "transport_failure"
	OutcomeAuthFailed         OutcomeKind = "auth_failed"
	OutcomeRateLimited        OutcomeKind = "rate_limited"
	OutcomeServerError        OutcomeKind = "server_error"
	OutcomeUnexpectedStatus   OutcomeKind = "unexpected_status"
	OutcomeDecodeError        OutcomeKind = "decode_error"
	OutcomeInternalError      OutcomeKind = "internal_error"
)

// Outcome is the value every Complete call resolves to. Failures are carried
// as data, never as a returned error, so the caller can render answers and
// failures on the same surface.
type Outcome struct {
	Kind OutcomeKind
	// Text holds the assistant message for OutcomeSuccess.
	Text string
	// Status holds the HTTP status code for status-classified outcomes.
	Status int
	// Err holds the underlying transport or decode error, when one exists.
	Err error
}

// OK reports whether the outcome carries usable assistant text.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

// Message returns the user-facing text for this outcome.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeSuccess:
		return o.Text
	case OutcomeEmptyContent:
		return "The model returned no content."
	case OutcomeNetworkUnavailable:
		return "No internet connection. Check your network and try again."
	case OutcomeConfigMissing:
		return "No API key configured. Set the ASKAI_API_KEY environment variable."
	case OutcomeConfigInvalid:
		return "The configured endpoint is not a valid URL."
	case OutcomeTransportFailure:
		return fmt.Sprintf("Request failed after retries: %v", o.Err)
	case OutcomeAuthFailed:
		return "Authorization failed. Check your API key."
	case OutcomeRateLimited:
		return "Rate limit exceeded. Wait a moment and try again."
	case OutcomeServerError:
		return "The server reported an error. Try again later."
	case OutcomeUnexpectedStatus:
		return fmt.Sprintf("Unexpected response status: %d", o.Status)
	case OutcomeDecodeError:
		return "Could not decode the model response."
	case OutcomeInternalError:
		return fmt.Sprintf("Could not build the request: %v", o.Err)
	default:
		return fmt.Sprintf("Unknown outcome: %s", o.Kind)
	}
}
